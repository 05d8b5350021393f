package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/filingdigest/internal/loader"
	"github.com/dgallion1/filingdigest/internal/pipeline"
	"github.com/dgallion1/filingdigest/internal/summarize"
	"github.com/go-chi/chi/v5"
)

// handleSubmit accepts one filing as "file" or several as "files", plus an
// optional "info_types" JSON object that replaces the server defaults.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var infos []summarize.InfoType
	if raw := strings.TrimSpace(r.FormValue("info_types")); raw != "" {
		parsed, err := summarize.ParseInfoTypes([]byte(raw))
		if err != nil {
			jsonError(w, "invalid info_types: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(parsed) == 0 {
			jsonError(w, "info_types must not be empty", http.StatusBadRequest)
			return
		}
		infos = parsed
	} else if len(s.orchestrator.Processor().InfoTypes()) == 0 {
		jsonError(w, "info_types is required (no server defaults configured)", http.StatusBadRequest)
		return
	}

	single := r.MultipartForm.File["file"]
	multi := r.MultipartForm.File["files"]
	if len(single)+len(multi) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}

	if len(single) == 1 && len(multi) == 0 {
		res, code := s.submitFile(single[0], infos)
		if msg, failed := res["error"].(string); failed {
			jsonError(w, msg, code)
			return
		}
		writeJSON(w, http.StatusAccepted, res)
		return
	}

	results := make([]map[string]any, 0, len(single)+len(multi))
	for _, fh := range append(append(make([]*multipart.FileHeader, 0, len(single)+len(multi)), single...), multi...) {
		res, _ := s.submitFile(fh, infos)
		results = append(results, res)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// submitFile queues one uploaded file. On failure the map carries "error" and
// the status code describes it.
func (s *Server) submitFile(fh *multipart.FileHeader, infos []summarize.InfoType) (map[string]any, int) {
	filename := sanitizeFilename(fh.Filename)
	fail := func(msg string, code int) (map[string]any, int) {
		return map[string]any{"filename": filename, "error": msg}, code
	}

	if !loader.IsSupportedExtension(filename) {
		return fail(fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
	}

	f, err := fh.Open()
	if err != nil {
		return fail("failed to open file", http.StatusInternalServerError)
	}
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	f.Close()
	if err != nil {
		return fail("failed to read file", http.StatusInternalServerError)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return fail(fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
	}

	job := pipeline.NewJob(filename, data, infos)
	if err := s.orchestrator.Submit(job); err != nil {
		return fail(err.Error(), http.StatusServiceUnavailable)
	}

	return map[string]any{
		"filename":   filename,
		"job_id":     job.ID,
		"status":     job.Snapshot().Status,
		"output":     job.Output,
		"poll_url":   fmt.Sprintf("/api/filings/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/filings/%s/result", job.ID),
	}, http.StatusAccepted
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleResult returns the flat title -> summary object of a completed job.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
	case pipeline.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "job failed",
			"phase":  snap.Phase,
			"errors": snap.Progress.Errors,
		})
		return
	default:
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
		})
		return
	}

	result, ok := job.Result()
	if !ok {
		jsonError(w, "result unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
