package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// CleanResponse strips markdown code fences that models wrap around JSON.
func CleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixInvalidEscapes repairs escape sequences that are not valid JSON, like
// the \N subtitle newline marker, by escaping the backslash.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(s[i+1])
				i += 2
			default:
				result.WriteString("\\\\")
				result.WriteByte(next)
				i += 2
			}
		} else {
			result.WriteByte(s[i])
			i++
		}
	}

	return result.String()
}

// ExtractArray finds the first JSON array of T in a model response, looking
// inside common wrapper objects ({"results": [...]}) when needed. validate
// decides whether a candidate slice is usable.
func ExtractArray[T any](text string, validate func([]T) bool) ([]T, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtract[T](raw, validate); ok {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid JSON array found in response")
}

func tryExtract[T any](raw json.RawMessage, validate func([]T) bool) ([]T, bool) {
	var results []T
	if err := json.Unmarshal(raw, &results); err == nil &&
		len(results) > 0 && validate(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	wrapperKeys := []string{"results", "items", "data", "entries"}
	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			var fieldResults []T
			if err := json.Unmarshal(fieldRaw, &fieldResults); err == nil &&
				len(fieldResults) > 0 && validate(fieldResults) {
				return fieldResults, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		var fieldResults []T
		if err := json.Unmarshal(fieldRaw, &fieldResults); err == nil &&
			len(fieldResults) > 0 && validate(fieldResults) {
			return fieldResults, true
		}
	}

	return nil, false
}

// Truncate shortens s for inclusion in error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
