package loader

import (
	"io"
	"strings"
)

// TextLoader handles plain text files. Runs of blank lines collapse to one
// and trailing whitespace on each line is dropped.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (string, error) {
	src, err := readText(r, filename)
	if err != nil {
		return "", err
	}
	return normalizeLines(src), nil
}

func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
