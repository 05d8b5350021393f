package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestHTMLLoader_JoinsTrimmedTextNodes(t *testing.T) {
	input := `<html><head><title> Annual Report </title>
<style>p { color: red }</style>
<script>var x = "Item 1.";</script></head>
<body>
  <p>  Item 1.   Business </p>
  <div>We make <b>widgets</b>.</div>
</body></html>`

	got, err := (&HTMLLoader{}).Load(strings.NewReader(input), "10k.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Annual Report Item 1.   Business We make widgets ."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHTMLLoader_Latin1Fallback(t *testing.T) {
	// 0xe9 is "é" in ISO-8859-1 and invalid on its own in UTF-8.
	input := []byte("<p>Caf\xe9 Item 1.</p>")

	got, err := (&HTMLLoader{}).Load(bytes.NewReader(input), "latin.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Café Item 1." {
		t.Errorf("got %q", got)
	}
}

func TestHTMLLoader_EntitiesDecoded(t *testing.T) {
	got, err := (&HTMLLoader{}).Load(strings.NewReader("<p>Item&nbsp;1.&amp;2</p>"), "e.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Item 1.&2" {
		t.Errorf("got %q", got)
	}
}

func TestHTMLLoader_Empty(t *testing.T) {
	got, err := (&HTMLLoader{}).Load(strings.NewReader(""), "empty.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestDecodeText_ValidUTF8Unchanged(t *testing.T) {
	got, err := decodeText([]byte("Ítem 1. ✓"), "x.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Ítem 1. ✓" {
		t.Errorf("got %q", got)
	}
}

func TestEncodingError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	var err error = &EncodingError{Filename: "a.html", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
	if !strings.Contains(err.Error(), "a.html") {
		t.Errorf("expected filename in message, got %q", err.Error())
	}
}

func TestTextLoader_Normalizes(t *testing.T) {
	input := "Item 1.  \r\nBusiness\r\n\r\n\r\n\r\nItem 2. Properties\t\n"
	got, err := (&TextLoader{}).Load(strings.NewReader(input), "a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Item 1.\nBusiness\n\nItem 2. Properties"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownLoader_PlainText(t *testing.T) {
	input := `# Item 1. Business

We make **widgets** and *gadgets*.

- first
- second

## Item 2. Properties

Offices in Ohio.
`
	got, err := (&MarkdownLoader{}).Load(strings.NewReader(input), "a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Item 1. Business",
		"We make widgets and gadgets.",
		"first",
		"second",
		"Item 2. Properties",
		"Offices in Ohio.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "**") || strings.Contains(got, "#") {
		t.Errorf("markup leaked into output:\n%s", got)
	}
	if strings.Index(got, "Item 1.") > strings.Index(got, "Item 2.") {
		t.Error("headings out of document order")
	}
}

func TestDOCXLoader_Paragraphs(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Item 1. Business")
	w.AddParagraph().AddText("We make widgets.")
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	got, err := (&DOCXLoader{}).Load(&buf, "a.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Item 1. Business\n\nWe make widgets."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"a.html", false},
		{"a.HTM", false},
		{"a.txt", false},
		{"a.md", false},
		{"a.pdf", false},
		{"a.docx", false},
		{"a.csv", true},
		{"noext", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForFile(tt.name, Options{})
			if (err != nil) != tt.wantErr {
				t.Errorf("ForFile(%q) err = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.html")
	if err := os.WriteFile(path, []byte("<p>Item 1.</p><p>hello</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Item 1. hello" {
		t.Errorf("got %q", got)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.html"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"b.html",
		"a.html",
		"c.HTML",
		"notes.txt",
		".hidden.html",
		filepath.Join("sub", "d.html"),
		filepath.Join(".git", "e.html"),
	}
	for _, f := range files {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	rel := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			r, _ := filepath.Rel(dir, p)
			out[i] = filepath.ToSlash(r)
		}
		return out
	}

	got, err := Discover(dir, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a.html", "b.html", "c.HTML"}; !slices.Equal(rel(got), want) {
		t.Errorf("flat: got %v, want %v", rel(got), want)
	}

	got, err = Discover(dir, []string{"html", ".txt"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a.html", "b.html", "c.HTML", "notes.txt", "sub/d.html"}; !slices.Equal(rel(got), want) {
		t.Errorf("recursive: got %v, want %v", rel(got), want)
	}
}

func TestDiscover_Errors(t *testing.T) {
	if _, err := Discover("", nil, false); err == nil {
		t.Error("expected error for empty root")
	}
	if _, err := Discover(filepath.Join(t.TempDir(), "nope"), nil, false); err == nil {
		t.Error("expected error for missing root")
	}
}
