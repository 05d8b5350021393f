package segment

import (
	"fmt"
	"regexp"
)

// MarkerPattern identifies a section heading such as "Item 7.".
type MarkerPattern struct {
	Label string
	re    *regexp.Regexp
}

// NewMarker compiles expr as a case-insensitive marker pattern.
func NewMarker(label, expr string) (MarkerPattern, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return MarkerPattern{}, fmt.Errorf("compile marker %q: %w", label, err)
	}
	return MarkerPattern{Label: label, re: re}, nil
}

// MustMarker is NewMarker for patterns known at compile time.
func MustMarker(label, expr string) MarkerPattern {
	m, err := NewMarker(label, expr)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the underlying expression.
func (m MarkerPattern) String() string {
	if m.re == nil {
		return ""
	}
	return m.re.String()
}

// ItemMarker returns the pattern for the "Item n." heading. The gap may be any
// whitespace including non-breaking spaces, which HTML filings use heavily.
func ItemMarker(n int) MarkerPattern {
	return MustMarker(fmt.Sprintf("Item %d.", n), fmt.Sprintf(`Item[\s\p{Zs}]+%d\.`, n))
}

// LegacyMarkers is the heading sequence filings have historically been split on:
// items 1 through 11 followed directly by 14 and 15. Items 12 and 13 are not
// boundaries, so their text lands inside the "Item 11." segment.
func LegacyMarkers() []MarkerPattern {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 14, 15}
	out := make([]MarkerPattern, 0, len(items))
	for _, n := range items {
		out = append(out, ItemMarker(n))
	}
	return out
}

// FullMarkers is the complete "Item 1." through "Item 15." sequence.
func FullMarkers() []MarkerPattern {
	out := make([]MarkerPattern, 0, 15)
	for n := 1; n <= 15; n++ {
		out = append(out, ItemMarker(n))
	}
	return out
}

// MarkerSet resolves a configured marker set name.
func MarkerSet(name string) ([]MarkerPattern, error) {
	switch name {
	case "", "legacy":
		return LegacyMarkers(), nil
	case "full":
		return FullMarkers(), nil
	default:
		return nil, fmt.Errorf("unknown marker set: %s", name)
	}
}

// Match is a located marker occurrence as byte offsets into the text.
type Match struct {
	Start int
	End   int
}

// Locator finds marker occurrences in a body of text.
type Locator interface {
	Locate(text string, m MarkerPattern) []Match
}

// RegexpLocator returns every non-overlapping regexp match in document order.
type RegexpLocator struct{}

func (RegexpLocator) Locate(text string, m MarkerPattern) []Match {
	if text == "" || m.re == nil {
		return nil
	}
	idx := m.re.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	out := make([]Match, len(idx))
	for i, loc := range idx {
		out[i] = Match{Start: loc[0], End: loc[1]}
	}
	return out
}
