package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

// postJSON sends body to url and returns the raw response. Non-2xx responses
// come back as *ServiceError.
func postJSON(ctx context.Context, client *http.Client, provider, url string, body any, headers map[string]string, log *slog.Logger) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debug("llm.http.request", "req_id", reqID, "provider", provider, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		log.Error("llm.http.send_error", "req_id", reqID, "provider", provider, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%s api: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	log.Debug("llm.http.response", "req_id", reqID, "provider", provider,
		"status", resp.StatusCode, "bytes", len(raw), "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return nil, &ServiceError{Provider: provider, StatusCode: resp.StatusCode, Message: string(raw)}
	}
	return raw, nil
}
