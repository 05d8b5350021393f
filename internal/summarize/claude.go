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

// ClaudeClient summarizes through the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	Stats *LLMStats
}

func NewClaudeClient(apiKey, model string, timeout time.Duration, log *slog.Logger) *ClaudeClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    "https://api.anthropic.com/v1",
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		Stats:      NewLLMStats(time.Hour),
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize sends one message merging passage into prior.
func (c *ClaudeClient) Summarize(ctx context.Context, prior, task, passage string) (string, error) {
	start := time.Now()
	out, err := c.complete(ctx, BuildPrompt(prior, task, passage))
	c.Stats.Record(time.Since(start).Milliseconds(), err)
	return out, err
}

func (c *ClaudeClient) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		System:    SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}

	raw, err := postJSON(ctx, c.httpClient, "anthropic", strings.TrimRight(c.baseURL, "/")+"/messages", reqBody, headers, c.log)
	if err != nil {
		return "", err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", &ServiceError{Provider: "anthropic", Message: apiResp.Error.Type + ": " + apiResp.Error.Message}
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &ServiceError{Provider: "anthropic", Message: "empty response"}
	}
	return sb.String(), nil
}

// Model returns the configured model name.
func (c *ClaudeClient) Model() string {
	return c.model
}

// Close releases idle connections.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
