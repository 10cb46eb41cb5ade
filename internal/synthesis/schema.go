// Package synthesis validates untrusted structured LLM output against
// strict schemas and repairs it through a bounded number of round-trips
// back to the model.
package synthesis

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType enumerates the value types a schema field accepts.
type FieldType string

const (
	FieldString      FieldType = "string"
	FieldStringArray FieldType = "string_array"
	FieldNumber      FieldType = "number"
	FieldBool        FieldType = "bool"
)

// FieldSpec constrains a single key of an object schema.
type FieldSpec struct {
	Type     FieldType
	Required bool
	// MaxLen bounds string length in runes. Zero means unbounded.
	MaxLen int
	// MaxItems bounds array length. Over-long arrays are truncated
	// rather than rejected. Zero means unbounded.
	MaxItems int
}

// ObjectSchema is a strict schema for a flat JSON object.
type ObjectSchema struct {
	Name   string
	Fields map[string]FieldSpec
}

// Validate checks obj against the schema. Over-long arrays are
// truncated in place to MaxItems; missing required keys, type
// mismatches, and over-long strings are hard failures returned as a
// sorted error list. The returned object is normalized and only
// meaningful when the error list is empty.
func (s ObjectSchema) Validate(obj map[string]any) (map[string]any, []string) {
	var errors []string

	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(obj))
	for _, key := range keys {
		spec := s.Fields[key]
		val, ok := obj[key]
		if !ok || val == nil {
			if spec.Required {
				errors = append(errors, fmt.Sprintf("missing required key %q", key))
			}
			continue
		}

		switch spec.Type {
		case FieldString:
			str, ok := val.(string)
			if !ok {
				errors = append(errors, fmt.Sprintf("key %q: expected string, got %T", key, val))
				continue
			}
			if spec.MaxLen > 0 && len([]rune(str)) > spec.MaxLen {
				errors = append(errors, fmt.Sprintf("key %q: string exceeds %d characters", key, spec.MaxLen))
				continue
			}
			out[key] = str

		case FieldStringArray:
			items, ok := toStringSlice(val)
			if !ok {
				errors = append(errors, fmt.Sprintf("key %q: expected array of strings, got %T", key, val))
				continue
			}
			if spec.MaxItems > 0 && len(items) > spec.MaxItems {
				items = items[:spec.MaxItems]
			}
			out[key] = items

		case FieldNumber:
			num, ok := val.(float64)
			if !ok {
				errors = append(errors, fmt.Sprintf("key %q: expected number, got %T", key, val))
				continue
			}
			out[key] = num

		case FieldBool:
			b, ok := val.(bool)
			if !ok {
				errors = append(errors, fmt.Sprintf("key %q: expected boolean, got %T", key, val))
				continue
			}
			out[key] = b
		}
	}

	return out, errors
}

// Describe renders the schema as instructions suitable for a prompt.
func (s ObjectSchema) Describe() string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Respond with a JSON object named %q with exactly these keys:\n", s.Name)
	for _, key := range keys {
		spec := s.Fields[key]
		fmt.Fprintf(&b, "- %q: %s", key, describeType(spec.Type))
		if spec.MaxLen > 0 {
			fmt.Fprintf(&b, ", at most %d characters", spec.MaxLen)
		}
		if spec.MaxItems > 0 {
			fmt.Fprintf(&b, ", at most %d items", spec.MaxItems)
		}
		if spec.Required {
			b.WriteString(" (required)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeType(t FieldType) string {
	switch t {
	case FieldString:
		return "a string"
	case FieldStringArray:
		return "an array of strings"
	case FieldNumber:
		return "a number"
	case FieldBool:
		return "a boolean"
	}
	return string(t)
}

func toStringSlice(val any) ([]string, bool) {
	raw, ok := val.([]any)
	if !ok {
		return nil, false
	}
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		items = append(items, str)
	}
	return items, true
}
