package store

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dgallion1/filingdigest/internal/pathstore"
)

// PathstoreSink stores each result under filings/<slug> with one child node per
// info type. Earlier nodes for the same document are replaced.
type PathstoreSink struct {
	client *pathstore.Client
	prefix string
}

func NewPathstoreSink(client *pathstore.Client) *PathstoreSink {
	return &PathstoreSink{client: client, prefix: "filings"}
}

func (s *PathstoreSink) Put(ctx context.Context, name string, result DocumentResult) error {
	key := s.Key(name)
	if err := s.client.DeleteNode(ctx, key, true); err != nil {
		return &SerializationError{Name: name, Err: err}
	}
	if err := s.client.PutNode(ctx, key, pathstore.NodeRequest{
		Value:      result,
		MemoryType: "filing",
		Source:     name,
	}); err != nil {
		return &SerializationError{Name: name, Err: err}
	}
	for i, child := range childSlugs(result.Titles()) {
		e := result.Entries[i]
		if err := s.client.PutNode(ctx, key+"/"+child, pathstore.NodeRequest{
			Value:      e.Summary,
			MemoryType: "summary",
			Salience:   0.5,
			Source:     name,
		}); err != nil {
			return &SerializationError{Name: name, Err: err}
		}
	}
	return nil
}

// childSlugs slugifies titles, suffixing -2, -3, ... onto any slug already
// taken so distinct titles never share a node.
func childSlugs(titles []string) []string {
	out := make([]string, len(titles))
	used := make(map[string]bool, len(titles))
	for i, title := range titles {
		base := Slugify(title)
		slug := base
		for n := 2; used[slug]; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		used[slug] = true
		out[i] = slug
	}
	return out
}

// Key is the pathstore key for an output name.
func (s *PathstoreSink) Key(name string) string {
	base := filepath.Base(name)
	return s.prefix + "/" + Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	if s == "" {
		s = "untitled"
	}
	return s
}
