package outfit

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?im)^```json\\s*|^```\\s*|```\\s*$")

// StripFences removes markdown code-fence markers, any case, from model text.
func StripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(text), ""))
}

// extractObject trims prose around the outermost JSON object.
func extractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// Parse turns raw model text into a candidate recommendation.
func Parse(raw string) (*Recommendation, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, &MalformedOutputError{Err: errors.New("empty response")}
	}

	body, ok := extractObject(text)
	if !ok {
		return nil, &MalformedOutputError{Preview: preview(text), Err: errors.New("no JSON object found")}
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, &MalformedOutputError{Preview: preview(body), Err: err}
	}
	return &rec, nil
}

func preview(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
