package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeWithFallback decodes raw as JSON into out. Models sometimes wrap the
// payload in a markdown fence or prepend prose, so when plain decoding fails
// it retries with the fence stripped and then with the first balanced JSON
// object found in the text.
func DecodeWithFallback(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty json input")
	}
	if err := json.Unmarshal([]byte(raw), out); err == nil {
		return nil
	}
	if stripped := stripCodeFence(raw); stripped != raw {
		if err := json.Unmarshal([]byte(stripped), out); err == nil {
			return nil
		}
	}
	if obj := firstJSONObject(raw); obj != "" {
		if err := json.Unmarshal([]byte(obj), out); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no decodable json found")
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func firstJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
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
				return raw[start : i+1]
			}
		}
	}
	return ""
}
