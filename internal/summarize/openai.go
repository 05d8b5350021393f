package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAIConfig configures the OpenAI chat completions client.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // default https://api.openai.com/v1
	Model       string // default gpt-3.5-turbo
	Temperature float64
	Timeout     time.Duration
}

// OpenAIClient summarizes through the OpenAI chat completions API.
type OpenAIClient struct {
	cfg        OpenAIConfig
	httpClient *http.Client
	log        *slog.Logger

	Stats *LLMStats
}

func NewOpenAIClient(cfg OpenAIConfig, log *slog.Logger) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
		Stats:      NewLLMStats(time.Hour),
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize sends one chat completion merging passage into prior.
func (c *OpenAIClient) Summarize(ctx context.Context, prior, task, passage string) (string, error) {
	start := time.Now()
	out, err := c.complete(ctx, BuildPrompt(prior, task, passage))
	c.Stats.Record(time.Since(start).Milliseconds(), err)
	return out, err
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	body := openAIRequest{
		Model: c.cfg.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, err := postJSON(ctx, c.httpClient, "openai", endpoint, body, headers, c.log)
	if err != nil {
		return "", err
	}

	var resp openAIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if resp.Error != nil {
		return "", &ServiceError{Provider: "openai", Message: resp.Error.Type + ": " + resp.Error.Message}
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Provider: "openai", Message: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.cfg.Model
}

// Close releases idle connections.
func (c *OpenAIClient) Close() {
	c.httpClient.CloseIdleConnections()
}
