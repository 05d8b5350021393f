package segment

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxLength caps segment text, in characters, before it reaches the summarizer.
const DefaultMaxLength = 20000

// ErrBoundaryNotFound reports that a start or end marker occurs fewer than twice.
var ErrBoundaryNotFound = errors.New("boundary not found")

// Segment is the text between two adjacent markers.
type Segment struct {
	Index      int
	StartLabel string
	EndLabel   string
	Text       string
	Found      bool
	Err        error // why the segment is absent; nil when Found
}

// Extract returns the text between the second occurrence of start and the
// second occurrence of end. The first occurrence of each heading is expected to
// be its table of contents entry.
func Extract(text string, start, end MarkerPattern) (string, error) {
	return ExtractWith(RegexpLocator{}, text, start, end)
}

// ExtractWith is Extract using a specific Locator.
func ExtractWith(loc Locator, text string, start, end MarkerPattern) (string, error) {
	return between(text, start, end, loc.Locate(text, start), loc.Locate(text, end))
}

func between(text string, start, end MarkerPattern, sm, em []Match) (string, error) {
	if len(sm) < 2 || len(em) < 2 {
		return "", fmt.Errorf("%w: %s (%d matches) to %s (%d matches)",
			ErrBoundaryNotFound, start.Label, len(sm), end.Label, len(em))
	}
	from, to := sm[1].End, em[1].Start
	if from >= to {
		return "", nil
	}
	return text[from:to], nil
}

// Segmenter splits a document on an ordered marker sequence.
type Segmenter struct {
	Markers   []MarkerPattern
	MaxLength int
	Locator   Locator
}

// NewSegmenter returns a Segmenter over markers with the default length cap.
func NewSegmenter(markers []MarkerPattern) *Segmenter {
	return &Segmenter{
		Markers:   markers,
		MaxLength: DefaultMaxLength,
		Locator:   RegexpLocator{},
	}
}

// Segment produces len(Markers)-1 segments, one per adjacent marker pair.
// Pairs whose boundaries cannot be found yield a segment with Found=false and
// empty text; the caller decides whether to report it.
func (s *Segmenter) Segment(text string) []Segment {
	if len(s.Markers) < 2 {
		return nil
	}
	loc := s.Locator
	if loc == nil {
		loc = RegexpLocator{}
	}
	maxLen := s.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	// Each marker is located once per document and reused by both pairs it borders.
	matches := make([][]Match, len(s.Markers))
	for i, m := range s.Markers {
		matches[i] = loc.Locate(text, m)
	}

	out := make([]Segment, 0, len(s.Markers)-1)
	for i := 0; i+1 < len(s.Markers); i++ {
		start, end := s.Markers[i], s.Markers[i+1]
		seg := Segment{
			Index:      i,
			StartLabel: start.Label,
			EndLabel:   end.Label,
		}
		body, err := between(text, start, end, matches[i], matches[i+1])
		if err != nil {
			seg.Err = err
		} else {
			seg.Found = true
			seg.Text = Truncate(body, maxLen)
		}
		out = append(out, seg)
	}
	return out
}

// Missing counts segments whose boundaries were not found.
func Missing(segs []Segment) int {
	n := 0
	for _, s := range segs {
		if !s.Found {
			n++
		}
	}
	return n
}

// Truncate keeps at most n characters from the head of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RuneLen is the character length used for the segment cap.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
