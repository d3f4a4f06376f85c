package proofread

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// MalformedResponseError means the completion could not be turned into an Edit.
type MalformedResponseError struct {
	Reason  string
	Content string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

var schemaLoader = gojsonschema.NewGoLoader(editSchema)

// parseEdit coerces completion content into an Edit. The content may be a bare
// object, a fenced code block or prose around an object.
func parseEdit(content string) (Edit, error) {
	raw := extractObject(content)
	if raw == "" {
		return Edit{}, &MalformedResponseError{Reason: "no JSON object in completion", Content: content}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return Edit{}, &MalformedResponseError{Reason: fmt.Sprintf("invalid JSON: %v", err), Content: content}
	}
	if s, ok := obj["feedback"].(string); ok {
		if strings.TrimSpace(s) == "" {
			obj["feedback"] = []any{}
		} else {
			obj["feedback"] = []any{s}
		}
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(obj))
	if err != nil {
		return Edit{}, &MalformedResponseError{Reason: fmt.Sprintf("schema validation error: %v", err), Content: content}
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return Edit{}, &MalformedResponseError{Reason: strings.Join(details, "; "), Content: content}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return Edit{}, &MalformedResponseError{Reason: err.Error(), Content: content}
	}
	var edit Edit
	if err := json.Unmarshal(b, &edit); err != nil {
		return Edit{}, &MalformedResponseError{Reason: err.Error(), Content: content}
	}
	if edit.Feedback == nil {
		edit.Feedback = []string{}
	}
	return edit, nil
}

// extractObject returns the first balanced {...} in s, or "".
func extractObject(s string) string {
	s = strings.TrimSpace(s)
	if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
		return s
	}
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end := matchBrace(s, start); end > 0 {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return ""
}

// matchBrace returns the index of the brace closing the one at start, skipping
// braces inside JSON strings. It returns -1 when the object is unterminated.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
