package loader

import (
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// EncodingError means the document could not be decoded as UTF-8 nor as the
// Latin-1 fallback.
type EncodingError struct {
	Filename string
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Filename, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// readText reads r fully and returns it as a UTF-8 string, reading it as
// ISO-8859-1 when it is not valid UTF-8.
func readText(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return decodeText(data, filename)
}

func decodeText(data []byte, filename string) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", &EncodingError{Filename: filename, Err: err}
	}
	return string(out), nil
}
