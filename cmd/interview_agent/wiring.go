package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/notify"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/registry"
	"github.com/jonathan/interview-agent/internal/scoring"
	"github.com/jonathan/interview-agent/internal/session"
	"github.com/jonathan/interview-agent/internal/store"
)

// loadConfig merges a config file (if given), the environment, and
// defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.MergeEnv()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLLMClient creates the Gemini client, or nil when no API key is
// configured. A nil client runs the whole interview on the standard
// question set and heuristic scoring.
func newLLMClient(ctx context.Context, cfg *config.Config) llm.Client {
	if cfg.APIKey == "" {
		log.Println("[SETUP] no GEMINI_API_KEY; using standard questions and heuristic scoring")
		return nil
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		log.Printf("[SETUP] failed to create LLM client, continuing without AI: %v", err)
		return nil
	}
	return client
}

// newStore selects the snapshot store: PostgreSQL when a database URL is
// configured, a JSON file when a snapshot path is, in-memory otherwise.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		return store.NewPostgresStore(ctx, cfg.DatabaseURL)
	case cfg.SnapshotPath != "":
		return store.NewFileStore(cfg.SnapshotPath)
	default:
		log.Println("[SETUP] no persistence configured; interviews will not survive a restart")
		return store.NewMemoryStore(), nil
	}
}

// newController assembles the session controller and restores any
// persisted session.
func newController(ctx context.Context, cfg *config.Config, client llm.Client, notifyFn notify.Func) (*session.Controller, store.Store, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.AITimeout()
	ctrl := session.NewController(
		registry.New(),
		questions.NewProvider(client, timeout, notifyFn),
		scoring.NewEngine(client, timeout, notifyFn),
		st,
	)
	if err := ctrl.Bootstrap(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return ctrl, st, nil
}

// aiGenerationBudget bounds how long startup-time question generation may
// take in the terminal flow before the interviewer sees anything.
func aiGenerationBudget(cfg *config.Config) time.Duration {
	return cfg.AITimeout() + 5*time.Second
}
