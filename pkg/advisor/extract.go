package advisor

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrNoJSONObject = errors.New("no JSON object found in model reply")
	ErrInvalidJSON  = errors.New("model reply contains braces but no valid JSON object")
)

// ExtractJSONObject returns the JSON object embedded in a model reply.
//
// The widest slice from the first "{" to the last "}" is tried first, which is what
// well-behaved replies produce. When that slice is not valid JSON (prose with stray
// braces, two objects, trailing commentary) the reply is stripped of markdown fences
// and scanned for the first balanced top-level object that parses. A truncated
// reply whose outer object never closes is rejected even if an inner value parses.
func ExtractJSONObject(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}

	if candidate := reply[start : end+1]; json.Valid([]byte(candidate)) {
		return candidate, nil
	}

	cleaned := stripMarkdownCodeFences(reply)
	if cleaned != reply {
		if s, e := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); s != -1 && e > s {
			if candidate := cleaned[s : e+1]; json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
	}

	// Only top-level objects are candidates. An object that never closes swallows
	// the rest of the reply, so nothing after its opening brace is considered.
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '{' {
			continue
		}
		candidate, ok := balancedObjectAt(cleaned, i)
		if !ok {
			break
		}
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
		i += len(candidate) - 1
	}
	return "", ErrInvalidJSON
}

// balancedObjectAt returns the object starting at s[start] up to its matching brace.
// Braces inside JSON strings are ignored.
func balancedObjectAt(s string, start int) (string, bool) {
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// stripMarkdownCodeFences removes a ```json ... ``` wrapper if the reply has one.
func stripMarkdownCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	firstNewline := strings.Index(trimmed, "\n")
	lastFence := strings.LastIndex(trimmed, "```")
	if firstNewline == -1 || lastFence <= firstNewline {
		return s
	}
	return strings.TrimSpace(trimmed[firstNewline+1 : lastFence])
}
