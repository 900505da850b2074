package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Properties holds default properties and constraints. The original service
// treats both as free-form JSON objects so the editor does too.
type Properties map[string]any

// ParseProperties decodes a JSON object. Blank input yields an empty map.
func ParseProperties(raw string) (Properties, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Properties{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var out Properties
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	var rest json.RawMessage
	if err := dec.Decode(&rest); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("document: unexpected data after properties object")
	}
	if out == nil {
		out = Properties{}
	}
	return out, nil
}

// MarshalJSON encodes a nil map as an empty object.
func (p Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(p))
}

// String renders the properties as indented JSON for the editor textareas.
func (p Properties) String() string {
	if len(p) == 0 {
		return "{}"
	}
	data, err := json.Marshal(map[string]any(p))
	if err != nil {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

// Keys returns the sorted top-level keys.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone deep-copies the JSON tree.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for key, value := range p {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	default:
		return typed
	}
}
