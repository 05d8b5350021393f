package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/filingdigest/internal/pipeline"
	"github.com/dgallion1/filingdigest/internal/segment"
)

func TestPrintDocumentDone(t *testing.T) {
	var buf bytes.Buffer
	printDocumentDone(&buf, "/data/acme-10k.html", nil)
	if !strings.Contains(buf.String(), "acme-10k.html JSON saved") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	printDocumentDone(&buf, "/data/bad.html", errors.New("summarize failed"))
	if !strings.Contains(buf.String(), "bad.html") || !strings.Contains(buf.String(), "summarize failed") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrintSegments(t *testing.T) {
	segs := []segment.Segment{
		{Index: 0, StartLabel: "Item 1.", EndLabel: "Item 2.", Text: "  We make\n widgets. ", Found: true},
		{Index: 1, StartLabel: "Item 2.", EndLabel: "Item 3."},
	}
	var buf bytes.Buffer
	printSegments(&buf, "acme.html", segs, 60)
	out := buf.String()
	for _, want := range []string{"acme.html", "We make widgets.", "missing", "1 of 2 segments found"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	printRunSummary(&buf, pipeline.BatchReport{
		Succeeded: []string{"a", "b"},
		Failed:    map[string]error{"c": errors.New("x")},
	})
	if !strings.Contains(buf.String(), "1 failed") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPreviewText(t *testing.T) {
	if got := previewText("a\n\n b   c", 10); got != "a b c" {
		t.Errorf("got %q", got)
	}
	if got := previewText("abcdefgh", 3); got != "abc…" {
		t.Errorf("got %q", got)
	}
	if got := previewText("abc", 0); got != "" {
		t.Errorf("got %q", got)
	}
}
