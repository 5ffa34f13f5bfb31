package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject indicates the model response carried no balanced JSON object.
var ErrNoJSONObject = errors.New("no json object in response")

// ExtractJSONObject returns the first balanced {...} span in text. Braces inside
// JSON string literals are ignored.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := matchBrace(text, start); end > 0 {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// ParseResponse extracts and decodes the JSON object embedded in a model response.
func ParseResponse(text string) (map[string]interface{}, error) {
	span, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, fmt.Errorf("parse analysis json: %w", err)
	}
	return payload, nil
}

func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
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
