package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink persists one DocumentResult under an output name.
type Sink interface {
	Put(ctx context.Context, name string, result DocumentResult) error
}

// SerializationError means a result could not be persisted. It is scoped to
// the one document and never affects others.
type SerializationError struct {
	Name string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Name, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// FileSink writes each result as <Dir>/<name>. Existing files are overwritten.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Put(ctx context.Context, name string, result DocumentResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || strings.TrimSpace(base) == "" {
		return &SerializationError{Name: name, Err: fmt.Errorf("invalid output name")}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return &SerializationError{Name: name, Err: err}
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &SerializationError{Name: name, Err: fmt.Errorf("create output dir: %w", err)}
	}
	if err := os.WriteFile(filepath.Join(s.Dir, base), append(data, '\n'), 0o644); err != nil {
		return &SerializationError{Name: name, Err: err}
	}
	return nil
}

// Path returns where Put writes name.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

// MultiSink writes to every sink in order and stops at the first failure.
type MultiSink []Sink

func (m MultiSink) Put(ctx context.Context, name string, result DocumentResult) error {
	for _, s := range m {
		if err := s.Put(ctx, name, result); err != nil {
			return err
		}
	}
	return nil
}
