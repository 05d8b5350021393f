package summarize

import (
	"fmt"
	"log/slog"
	"time"
)

// Service is a Summarizer backed by a remote model.
type Service interface {
	Summarizer
	Model() string
	Snapshot() StatsSnapshot
	Close()
}

// ProviderConfig selects and configures a Service.
type ProviderConfig struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	Model    string
	BaseURL  string // openai only
	Timeout  time.Duration
}

// New builds the Service named by cfg.Provider.
func New(cfg ProviderConfig, log *slog.Logger) (Service, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, log), nil
	case "anthropic":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider: %s", cfg.Provider)
	}
}

// Snapshot returns the client's call statistics.
func (c *OpenAIClient) Snapshot() StatsSnapshot { return c.Stats.Snapshot() }

// Snapshot returns the client's call statistics.
func (c *ClaudeClient) Snapshot() StatsSnapshot { return c.Stats.Snapshot() }
