package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var jsonFence = regexp.MustCompile("```(?:json)?\\s*")

func cleanJSONResponse(s string) string {
	s = jsonFence.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixes invalid JSON escape sequences like \N (SRT newline).
// It replaces \N with \\N so JSON can parse it, preserving the literal \N in the output.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			// Valid JSON escape sequences: ", \, /, b, f, n, r, t, u
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(next)
			default:
				result.WriteString("\\\\")
				result.WriteByte(next)
			}
			i += 2
		} else {
			result.WriteByte(s[i])
			i++
		}
	}

	return result.String()
}

var wrapperKeys = []string{"results", "translations", "data", "items"}

func extractTranslationResults(text string) ([]TranslationResult, error) {
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
		if results, ok := tryExtractResults(gjson.ParseBytes(raw)); ok {
			return results, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

// tries the value itself, then well-known wrapper keys, then every other
// key in document order
func tryExtractResults(v gjson.Result) ([]TranslationResult, bool) {
	if v.IsArray() {
		var results []TranslationResult
		if err := json.Unmarshal([]byte(v.Raw), &results); err != nil {
			return nil, false
		}
		return results, validateResults(results)
	}
	if !v.IsObject() {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if field := v.Get(key); field.IsArray() {
			if results, ok := tryExtractResults(field); ok {
				return results, true
			}
		}
	}

	var (
		found []TranslationResult
		ok    bool
	)
	v.ForEach(func(_, field gjson.Result) bool {
		if field.IsArray() {
			found, ok = tryExtractResults(field)
		}
		return !ok
	})
	return found, ok
}

func validateResults(results []TranslationResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
