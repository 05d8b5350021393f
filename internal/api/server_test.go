package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/filingdigest/internal/config"
	"github.com/dgallion1/filingdigest/internal/pipeline"
	"github.com/dgallion1/filingdigest/internal/segment"
	"github.com/dgallion1/filingdigest/internal/summarize"
)

const testKey = "test-key"

type echoSummarizer struct{}

func (echoSummarizer) Summarize(_ context.Context, prior, task, passage string) (string, error) {
	return prior + "[" + task + ":" + strings.TrimSpace(passage) + "]", nil
}

type fakeStats struct{}

func (fakeStats) Model() string { return "fake-model" }
func (fakeStats) Snapshot() summarize.StatsSnapshot {
	return summarize.StatsSnapshot{Calls: 3, Errors: 1, MaxMs: 40}
}

const filing = "<p>Item 1.</p><p>Item 2.</p><p>Item 1.</p><p>alpha</p><p>Item 2.</p><p>end</p>"

type testEnv struct {
	srv  *httptest.Server
	orch *pipeline.Orchestrator
}

func newTestEnv(t *testing.T, start bool, defaults []summarize.InfoType) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := pipeline.NewProcessor(pipeline.ProcessorConfig{
		Segmenter:  segment.NewSegmenter([]segment.MarkerPattern{segment.ItemMarker(1), segment.ItemMarker(2)}),
		Summarizer: echoSummarizer{},
		InfoTypes:  defaults,
	}, log)
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{WorkerCount: 1, MaxQueueSize: 2, JobTTL: time.Hour}, proc, log)
	if start {
		orch.Start(context.Background())
		t.Cleanup(orch.Stop)
	}
	cfg := config.Config{APIKey: testKey, MaxUploadBytes: 1 << 20}
	srv := httptest.NewServer(NewServer(orch, fakeStats{}, log, cfg))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, orch: orch}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

type upload struct {
	field, name, content string
}

func multipartBody(t *testing.T, files []upload, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(f.content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false, nil)
	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, false, nil)

	resp, err := http.Get(env.srv.URL + "/api/stats/llm")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/stats/llm", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: expected 401, got %d", resp.StatusCode)
	}
}

func TestSubmitAndFetchResult(t *testing.T) {
	env := newTestEnv(t, true, nil)

	body, ct := multipartBody(t,
		[]upload{{"file", "acme.html", filing}},
		map[string]string{"info_types": `{"Zeta": "z", "Alpha": "a"}`},
	)
	resp, out := env.do(t, http.MethodPost, "/api/filings", body, ct)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %v", resp.StatusCode, out)
	}
	jobID, _ := out["job_id"].(string)
	if jobID == "" {
		t.Fatalf("expected job_id, got %v", out)
	}
	if out["output"] != "acme.json" {
		t.Errorf("output = %v", out["output"])
	}

	deadline := time.Now().Add(5 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		_, st := env.do(t, http.MethodGet, "/api/filings/"+jobID+"/status", nil, "")
		status, _ = st["status"].(string)
		if status == string(pipeline.StatusCompleted) || status == string(pipeline.StatusFailed) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status != string(pipeline.StatusCompleted) {
		t.Fatalf("expected completed, got %q", status)
	}

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/filings/"+jobID+"/result", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rr, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(rr.Body)
	rr.Body.Close()
	if rr.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.StatusCode, raw)
	}
	want := `{"Zeta":"[z:alpha]","Alpha":"[a:alpha]"}`
	if strings.TrimSpace(string(raw)) != want {
		t.Errorf("result = %s, want %s", raw, want)
	}
}

func TestSubmit_MultipleFiles(t *testing.T) {
	env := newTestEnv(t, false, []summarize.InfoType{{Title: "A", Description: "a"}})

	body, ct := multipartBody(t, []upload{
		{"files", "a.html", filing},
		{"files", "b.csv", "x,y"},
	}, nil)
	resp, out := env.do(t, http.MethodPost, "/api/filings", body, ct)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	jobs, _ := out["jobs"].([]any)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 entries, got %v", out)
	}
	first, _ := jobs[0].(map[string]any)
	second, _ := jobs[1].(map[string]any)
	if first["job_id"] == nil {
		t.Errorf("expected first file queued, got %v", first)
	}
	if second["error"] == nil {
		t.Errorf("expected unsupported second file, got %v", second)
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name     string
		defaults []summarize.InfoType
		files    []upload
		fields   map[string]string
		want     int
	}{
		{"no file", []summarize.InfoType{{Title: "A"}}, nil, nil, http.StatusBadRequest},
		{"unsupported", []summarize.InfoType{{Title: "A"}}, []upload{{"file", "a.exe", "x"}}, nil, http.StatusBadRequest},
		{"bad info types", nil, []upload{{"file", "a.html", filing}}, map[string]string{"info_types": `["a"]`}, http.StatusBadRequest},
		{"empty info types", nil, []upload{{"file", "a.html", filing}}, map[string]string{"info_types": `{}`}, http.StatusBadRequest},
		{"no defaults", nil, []upload{{"file", "a.html", filing}}, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false, tt.defaults)
			body, ct := multipartBody(t, tt.files, tt.fields)
			resp, out := env.do(t, http.MethodPost, "/api/filings", body, ct)
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d: %v", tt.want, resp.StatusCode, out)
			}
			if out["error"] == nil {
				t.Errorf("expected error message, got %v", out)
			}
		})
	}
}

func TestStatusAndResult_NotFound(t *testing.T) {
	env := newTestEnv(t, false, nil)
	for _, path := range []string{"/api/filings/nope/status", "/api/filings/nope/result"} {
		resp, _ := env.do(t, http.MethodGet, path, nil, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func TestResult_NotFinished(t *testing.T) {
	// Workers not started, so the job stays queued.
	env := newTestEnv(t, false, []summarize.InfoType{{Title: "A", Description: "a"}})
	job := pipeline.NewJob("a.html", []byte(filing), nil)
	if err := env.orch.Submit(job); err != nil {
		t.Fatal(err)
	}
	resp, out := env.do(t, http.MethodGet, "/api/filings/"+job.ID+"/result", nil, "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
	if out["status"] != string(pipeline.StatusQueued) {
		t.Errorf("status = %v", out["status"])
	}
}

func TestLLMStats(t *testing.T) {
	env := newTestEnv(t, false, nil)
	resp, out := env.do(t, http.MethodGet, "/api/stats/llm", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if out["model"] != "fake-model" {
		t.Errorf("model = %v", out["model"])
	}
	stats, _ := out["stats"].(map[string]any)
	if stats["calls"] != float64(3) {
		t.Errorf("stats = %v", stats)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.html", "report.html"},
		{"../../etc/passwd", "passwd"},
		{`C:\filings\10k.htm`, "10k.htm"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
