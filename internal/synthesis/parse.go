package synthesis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse extracts a JSON object from raw model output. It attempts a
// direct parse first, then falls back to the contents of a fenced code
// block.
func Parse(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		return obj, nil
	}

	if fenced, ok := extractFence(trimmed); ok {
		if err := json.Unmarshal([]byte(fenced), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("output is not a JSON object")
}

// extractFence returns the body of the first fenced code block.
func extractFence(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	rest := s[start+3:]

	// Drop the language tag line, e.g. ```json.
	if nl := strings.Index(rest, "\n"); nl != -1 {
		rest = rest[nl+1:]
	}

	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// ValidateCandidate parses and validates a candidate response string.
// The returned errors are empty when the candidate satisfies the schema.
func ValidateCandidate(raw string, schema ObjectSchema) (map[string]any, []string) {
	obj, err := Parse(raw)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return schema.Validate(obj)
}
