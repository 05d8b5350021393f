package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/filingdigest/internal/pipeline"
	"github.com/dgallion1/filingdigest/internal/segment"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

type runHeader struct {
	Config    string
	DataDir   string
	OutputDir string
	Markers   string
	Model     string
	InfoTypes int
	Documents int
}

func printRunHeader(w io.Writer, h runHeader) {
	content := fmt.Sprintf("%s %s\n%s %s\n%s %s\n%s %s  %s %s\n%s %d  %s %d",
		dimStyle.Render("Config:"), h.Config,
		dimStyle.Render("Input:"), h.DataDir,
		dimStyle.Render("Output:"), h.OutputDir,
		dimStyle.Render("Model:"), titleStyle.Render(h.Model),
		dimStyle.Render("Markers:"), h.Markers,
		dimStyle.Render("Info types:"), h.InfoTypes,
		dimStyle.Render("Documents:"), h.Documents,
	)
	fmt.Fprintln(w, boxStyle.Render(content))
}

// printDocumentDone acknowledges one finished document.
func printDocumentDone(w io.Writer, path string, err error) {
	name := filepath.Base(path)
	if err != nil {
		fmt.Fprintf(w, "%s %s %s\n", errorStyle.Render("✗"), name, dimStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(w, "%s %s JSON saved\n", successStyle.Render("✓"), name)
}

func printRunSummary(w io.Writer, report pipeline.BatchReport) {
	failed := len(report.Failed)
	status := successStyle.Render("all documents saved")
	if failed > 0 {
		status = errorStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	fmt.Fprintln(w, boxStyle.Render(fmt.Sprintf("%s %d  %s",
		dimStyle.Render("Saved:"), len(report.Succeeded), status)))
}

func printSegments(w io.Writer, name string, segs []segment.Segment, preview int) {
	fmt.Fprintln(w, titleStyle.Render(name))
	for _, s := range segs {
		label := fmt.Sprintf("%2d  %-9s → %-9s", s.Index, s.StartLabel, s.EndLabel)
		if !s.Found {
			fmt.Fprintf(w, "%s  %s\n", label, warnStyle.Render("missing"))
			continue
		}
		fmt.Fprintf(w, "%s  %s  %s\n", label,
			successStyle.Render(fmt.Sprintf("%6d chars", segment.RuneLen(s.Text))),
			dimStyle.Render(previewText(s.Text, preview)))
	}
	fmt.Fprintf(w, "%s %d of %d segments found\n",
		dimStyle.Render("Total:"), len(segs)-segment.Missing(segs), len(segs))
}

func previewText(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 {
		return ""
	}
	if segment.RuneLen(s) > n {
		return segment.Truncate(s, n) + "…"
	}
	return s
}
