package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const snippetLimit = 160

// DecodeLLMJSON unmarshals a model reply into target. When the reply is not
// bare JSON, the first balanced object or array is cut out of it, which
// covers code fences and chatter around the payload.
func DecodeLLMJSON(content string, target any) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("empty payload")
	}
	err := json.Unmarshal([]byte(content), target)
	if err == nil {
		return nil
	}
	inner, ok := extractJSON(content)
	if !ok || inner == content {
		return fmt.Errorf("%w (payload snippet: %s)", err, snippet(content))
	}
	if err := json.Unmarshal([]byte(inner), target); err != nil {
		return fmt.Errorf("%w (extracted payload snippet: %s)", err, snippet(inner))
	}
	return nil
}

// extractJSON returns the first balanced {...} or [...] span in s. Brackets
// inside JSON strings are ignored.
func extractJSON(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	for start >= 0 {
		if end := closingIndex(s, start); end > start {
			return s[start : end+1], true
		}
		next := strings.IndexAny(s[start+1:], "{[")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func closingIndex(s string, start int) int {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// snippet collapses whitespace and truncates content for error messages.
func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	if r := []rune(clean); len(r) > snippetLimit {
		return string(r[:snippetLimit]) + "..."
	}
	return clean
}
