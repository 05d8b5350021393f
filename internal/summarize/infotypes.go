package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseInfoTypes decodes a JSON object of title -> description pairs, keeping
// the order the titles appear in. A repeated title keeps its first position
// and takes the last description.
func ParseInfoTypes(data []byte) ([]InfoType, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read info types: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("info types must be a JSON object")
	}

	var out []InfoType
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read info type title: %w", err)
		}
		title, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var desc string
		if err := dec.Decode(&desc); err != nil {
			return nil, fmt.Errorf("info type %q: description must be a string: %w", title, err)
		}
		if i, dup := seen[title]; dup {
			out[i].Description = desc
			continue
		}
		seen[title] = len(out)
		out = append(out, InfoType{Title: title, Description: desc})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read info types: %w", err)
	}
	return out, nil
}
