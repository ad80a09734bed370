// Package config loads and saves the dbchat configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/exedev/dbchat/internal/transcript"
)

// Config is the persisted client configuration. Flags override it on
// startup; API keys fall back to the vendor environment variables when
// left empty.
type Config struct {
	// Provider is the LLM vendor name: anthropic, openai, or gemini.
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`

	// BaseURL overrides the vendor endpoint (OpenAI-compatible servers).
	BaseURL string `json:"base_url,omitempty"`

	// Server is the default MCP server target when none is given on the
	// command line: a script path, npm package, command line, or URL.
	Server string `json:"server,omitempty"`

	// TranscriptWindow bounds the retained conversation history.
	TranscriptWindow int `json:"transcript_window"`

	// RequestTimeout bounds one vendor request.
	RequestTimeout time.Duration `json:"request_timeout"`

	// NoFollowRedirects disables HTTP redirect following for vendor
	// requests. Redirects are followed by default.
	NoFollowRedirects bool `json:"no_follow_redirects,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider:         "anthropic",
		TranscriptWindow: transcript.DefaultWindow,
		RequestTimeout:   120 * time.Second,
	}
}

// Load reads the config file at path. A missing file is not an error:
// defaults are returned so the client runs without any setup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Provider == "" {
		cfg.Provider = "anthropic"
	}
	if cfg.TranscriptWindow <= 0 {
		cfg.TranscriptWindow = transcript.DefaultWindow
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}

	return cfg, nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
