package outfit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a list field the model may send as an array, a single
// string or an object of named strings. It always marshals as an array.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	out, err := NormalizeList(data)
	if err != nil {
		return err
	}
	*l = out
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// NormalizeList resolves a raw JSON value into a list:
// an object yields its string values in document order, a string yields a
// one-element list, an array yields its string elements, anything else an
// empty list. The result is never nil.
func NormalizeList(data []byte) (StringList, error) {
	data = bytes.TrimSpace(data)
	out := StringList{}
	if len(data) == 0 {
		return out, nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode string list: %w", err)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		return out, nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode string list: %w", err)
		}
		for _, item := range items {
			if s, ok := rawString(item); ok {
				out = append(out, s)
			}
		}
		return out, nil

	case '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode string list: %w", err)
		}
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("decode string list key: %w", err)
			}
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return nil, fmt.Errorf("decode string list value: %w", err)
			}
			if s, ok := rawString(value); ok {
				out = append(out, s)
			}
		}
		return out, nil
	}

	return out, nil
}

func rawString(data json.RawMessage) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
