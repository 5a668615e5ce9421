// Package config provides configuration loading and validation for the
// interview agent. Values come from a JSON file, environment variables,
// and CLI flags, in increasing order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AI call timeout bounds, in seconds. Outside this range the interview
// would either give the model no real chance or leave the interviewer
// staring at a spinner.
const (
	DefaultAITimeoutSeconds = 20
	MinAITimeoutSeconds     = 5
	MaxAITimeoutSeconds     = 300
)

// DefaultPort is the HTTP listen port when none is configured.
const DefaultPort = 8085

// Config is the interview agent configuration. All fields are optional;
// missing values fall back to defaults, and a missing API key only
// disables AI question generation and scoring.
type Config struct {
	// APIKey is the Gemini API key. Empty means fallback-only operation.
	APIKey string `json:"api_key,omitempty"`
	// DatabaseURL selects PostgreSQL snapshot persistence when set.
	DatabaseURL string `json:"database_url,omitempty"`
	// SnapshotPath selects file snapshot persistence when set (and no
	// database is configured).
	SnapshotPath string `json:"snapshot_path,omitempty"`

	Port             int  `json:"port,omitempty"`
	AITimeoutSeconds int  `json:"ai_timeout_seconds,omitempty"`
	UseBrowser       bool `json:"use_browser,omitempty"`
	Verbose          bool `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// FromEnv builds a configuration from environment variables alone.
func FromEnv() *Config {
	cfg := &Config{
		APIKey:       os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SnapshotPath: os.Getenv("SNAPSHOT_PATH"),
	}
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = port
	}
	if secs, err := strconv.Atoi(os.Getenv("AI_TIMEOUT_SECONDS")); err == nil {
		cfg.AITimeoutSeconds = secs
	}
	return cfg
}

// MergeEnv fills empty fields from the environment. File and flag values
// win over environment values.
func (c *Config) MergeEnv() {
	env := FromEnv()
	if c.APIKey == "" {
		c.APIKey = env.APIKey
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = env.DatabaseURL
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = env.SnapshotPath
	}
	if c.Port == 0 {
		c.Port = env.Port
	}
	if c.AITimeoutSeconds == 0 {
		c.AITimeoutSeconds = env.AITimeoutSeconds
	}
}

// Normalize applies defaults and clamps values into their valid ranges.
func (c *Config) Normalize() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AITimeoutSeconds == 0 {
		c.AITimeoutSeconds = DefaultAITimeoutSeconds
	}
	if c.AITimeoutSeconds < MinAITimeoutSeconds {
		c.AITimeoutSeconds = MinAITimeoutSeconds
	}
	if c.AITimeoutSeconds > MaxAITimeoutSeconds {
		c.AITimeoutSeconds = MaxAITimeoutSeconds
	}
}

// Validate checks value ranges after normalization.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.DatabaseURL != "" && c.SnapshotPath != "" {
		return fmt.Errorf("config error: 'database_url' and 'snapshot_path' are mutually exclusive")
	}
	return nil
}

// AITimeout returns the AI call timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}
