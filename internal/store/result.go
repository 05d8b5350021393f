package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one info-type title and its final summary.
type Entry struct {
	Title   string
	Summary string
}

// DocumentResult maps info-type titles to summaries for one document.
// Entries keep the order in which the info types were requested.
type DocumentResult struct {
	Entries []Entry
}

// NewDocumentResult zips titles with summaries. Both slices must be aligned.
func NewDocumentResult(titles, summaries []string) (DocumentResult, error) {
	if len(titles) != len(summaries) {
		return DocumentResult{}, fmt.Errorf("%d titles but %d summaries", len(titles), len(summaries))
	}
	r := DocumentResult{Entries: make([]Entry, len(titles))}
	for i := range titles {
		r.Entries[i] = Entry{Title: titles[i], Summary: summaries[i]}
	}
	return r, nil
}

// Titles returns the keys in order.
func (r DocumentResult) Titles() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Title
	}
	return out
}

// Get returns the summary stored under title.
func (r DocumentResult) Get(title string) (string, bool) {
	for _, e := range r.Entries {
		if e.Title == title {
			return e.Summary, true
		}
	}
	return "", false
}

// MarshalJSON encodes the result as a flat object with keys in entry order.
func (r DocumentResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(e.Title); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(e.Summary); err != nil {
			return nil, err
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encoder.Encode terminates every value with a newline.
func trimNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}
