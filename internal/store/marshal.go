package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalJSON converts v to compact JSON TEXT for storage. Map keys come out
// sorted, so equal values store identically.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalStrings(data string) ([]string, error) {
	out := []string{}
	if data == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	return out, nil
}

func unmarshalCounts(data string) (map[string]int, error) {
	out := map[string]int{}
	if data == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal counts: %w", err)
	}
	return out, nil
}

// unmarshalData parses a report payload. Numbers are kept as json.Number so
// large integers survive.
func unmarshalData(data string) (map[string]any, error) {
	if data == "" || data == "{}" || data == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}
	return out, nil
}
