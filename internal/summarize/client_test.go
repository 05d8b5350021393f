package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildPrompt_ContainsParts(t *testing.T) {
	p := BuildPrompt("prior text", "find revenue", "new passage")
	for _, want := range []string{"find revenue", "Summary: prior text.", "Passage of text: new passage", "do not update the summary"} {
		if !strings.Contains(p, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

func TestOpenAIClient_Summarize(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"updated summary"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"}, quietLogger())
	out, err := c.Summarize(context.Background(), "old", "task", "passage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "updated summary" {
		t.Errorf("expected %q, got %q", "updated summary", out)
	}
	if got.Model != "gpt-3.5-turbo" {
		t.Errorf("expected default model, got %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if got.Messages[1].Content != BuildPrompt("old", "task", "passage") {
		t.Errorf("unexpected user prompt %q", got.Messages[1].Content)
	}
	if snap := c.Stats.Snapshot(); snap.Calls != 1 || snap.Errors != 0 {
		t.Errorf("expected one successful call recorded, got %+v", snap)
	}
}

func TestOpenAIClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, quietLogger())
	_, err := c.Summarize(context.Background(), "", "t", "p")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", se.StatusCode)
	}
	if snap := c.Stats.Snapshot(); snap.Errors != 1 {
		t.Errorf("expected one failed call recorded, got %+v", snap)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL}, quietLogger())
	_, err := c.Summarize(context.Background(), "", "t", "p")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
}

func TestOpenAIClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL}, quietLogger())
	if _, err := c.Summarize(context.Background(), "", "t", "p"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClaudeClient_Summarize(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "ak" {
			t.Errorf("unexpected api key header %q", r.Header.Get("x-api-key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"merged "},{"type":"text","text":"summary"}]}`))
	}))
	defer srv.Close()

	c := NewClaudeClient("ak", "claude-test", 0, quietLogger())
	c.baseURL = srv.URL
	out, err := c.Summarize(context.Background(), "old", "task", "passage")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "merged summary" {
		t.Errorf("expected %q, got %q", "merged summary", out)
	}
	if got.System != SystemPrompt {
		t.Errorf("expected system prompt to be set, got %q", got.System)
	}
	if got.Model != "claude-test" {
		t.Errorf("expected model claude-test, got %q", got.Model)
	}
}

func TestClaudeClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"type":"overloaded_error","message":"try later"}}`))
	}))
	defer srv.Close()

	c := NewClaudeClient("ak", "m", 0, quietLogger())
	c.baseURL = srv.URL
	_, err := c.Summarize(context.Background(), "", "t", "p")
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if !strings.Contains(se.Error(), "overloaded_error") {
		t.Errorf("expected error type in message, got %q", se.Error())
	}
}
