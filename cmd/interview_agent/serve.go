package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/notify"
	"github.com/jonathan/interview-agent/internal/server"
)

var (
	servePort       int
	serveConfigPath string
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview API server",
	Long:  "Start an HTTP server exposing operator login, candidate management, interview control, and a live session event stream.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config or 8085)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print request logs")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveVerbose {
		cfg.Verbose = true
	}

	authCfg, err := config.NewAuthConfig()
	if err != nil {
		return fmt.Errorf("failed to load auth config: %w", err)
	}
	if authCfg.PasswordHash == "" {
		return fmt.Errorf("OPERATOR_PASSWORD_HASH is required; generate one with 'interview_agent hash-password'")
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}

	client := newLLMClient(ctx, cfg)
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	ctrl, st, err := newController(ctx, cfg, client, notify.Log())
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		Auth:       authCfg,
		JWT:        jwtCfg,
		UseBrowser: cfg.UseBrowser,
		Verbose:    cfg.Verbose,
	}, ctrl)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}
