package summarize

import (
	"context"
	"fmt"

	"github.com/dgallion1/filingdigest/internal/segment"
)

// Summarizer folds a new passage into an existing summary for one task.
type Summarizer interface {
	Summarize(ctx context.Context, prior, task, passage string) (string, error)
}

// InfoType is a category of information to summarize. Title is the output key,
// Description steers the summarizer.
type InfoType struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Titles returns the info type titles in order.
func Titles(infos []InfoType) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Title
	}
	return out
}

// ServiceError is a failed call to the summarization service.
type ServiceError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s service error: %s", e.Provider, truncate(e.Message, 200))
	}
	return fmt.Sprintf("%s service error (status %d): %s", e.Provider, e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if cut := segment.Truncate(s, n); cut != s {
		return cut + "..."
	}
	return s
}
