// Package llm provides the Gemini client abstraction used for interview
// question generation and answer evaluation.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers.
type Client interface {
	// GenerateJSON generates JSON content using the specified model tier.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// StartSession opens a chat session with an opening prompt and returns
	// an opaque handle plus the first response. Later calls through the same
	// handle continue the same model context.
	StartSession(ctx context.Context, prompt string, tier ModelTier) (sessionID string, response string, err error)
	// ContinueSession sends a follow-up message on an existing session.
	ContinueSession(ctx context.Context, sessionID, prompt string) (string, error)
	// HasSession reports whether a session handle is still open.
	HasSession(sessionID string) bool
	// GetModel returns the underlying provider model for a tier.
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a new LLM client based on configuration.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return NewGeminiClient(ctx, config, apiKey)
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config

	mu       sync.Mutex
	sessions map[string]*genai.ChatSession
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:   client,
		config:   config,
		sessions: make(map[string]*genai.ChatSession),
	}, nil
}

// GenerateJSON generates JSON content using the specified model tier.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// StartSession opens a chat session with the given opening prompt. The
// returned handle lets a later evaluation continue the same model context.
func (c *GeminiClient) StartSession(ctx context.Context, prompt string, tier ModelTier) (string, string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", "", err
	}

	chat := model.StartChat()
	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", "", fmt.Errorf("failed to open chat session: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", "", err
	}

	sessionID := uuid.NewString()
	c.mu.Lock()
	c.sessions[sessionID] = chat
	c.mu.Unlock()

	return sessionID, CleanJSONBlock(text), nil
}

// ContinueSession sends a follow-up message on an existing chat session.
func (c *GeminiClient) ContinueSession(ctx context.Context, sessionID, prompt string) (string, error) {
	c.mu.Lock()
	chat, ok := c.sessions[sessionID]
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown session: %s", sessionID)
	}

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to continue chat session: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// HasSession reports whether a chat session handle is still open.
func (c *GeminiClient) HasSession(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[sessionID]
	return ok
}

// GetModel returns the model name for a tier.
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	c.sessions = make(map[string]*genai.ChatSession)
	c.mu.Unlock()
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiClient) model(tier ModelTier) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	return model, nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
