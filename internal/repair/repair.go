// Package repair recovers structured values from malformed or truncated model
// output. Generation calls request strict JSON, but token-limited responses
// can arrive with an unterminated string or unbalanced braces; the repair pass
// truncates to the last structurally valid prefix and synthesizes closing
// tokens, so a usable object survives instead of the whole result being
// dropped.
package repair

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseInto attempts a strict parse of raw into v, and on failure retries
// against the repaired text. The error from the second parse wraps the
// original strict-parse error.
func ParseInto(raw string, v any) error {
	cleaned := stripFences(raw)
	strictErr := json.Unmarshal([]byte(cleaned), v)
	if strictErr == nil {
		return nil
	}

	repaired, ok := Repair(cleaned)
	if !ok {
		return fmt.Errorf("response is not valid JSON and could not be repaired: %w", strictErr)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("repaired response still not valid JSON: %w (strict parse: %v)", err, strictErr)
	}
	return nil
}

// Repair runs a single bounded token-level pass over text that should have
// been JSON: it scans tracking string/escape state and container depth,
// truncates to the last position where a complete value had just ended, and
// appends the closing tokens for every container still open. It reports
// whether a non-trivial candidate was produced; validity is the caller's
// re-parse to decide.
func Repair(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || (raw[0] != '{' && raw[0] != '[') {
		return "", false
	}

	var (
		stack    []byte // open containers at the current scan position
		inString bool
		escaped  bool
		// expectValue is true between an object key's ':' (or a ',' / opening
		// bracket) and the completion of the value it introduces. A string
		// completing while expectValue is false is a key, not a value.
		expectValue bool
		lastGood    = -1 // offset just past the most recent complete value
		goodDepth   []byte
	)

	markGood := func(i int) {
		lastGood = i + 1
		goodDepth = append(goodDepth[:0], stack...)
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				if expectValue || len(stack) == 0 || stack[len(stack)-1] == '[' {
					expectValue = false
					markGood(i)
				}
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '{')
			expectValue = false
		case '[':
			stack = append(stack, '[')
			expectValue = true
		case '}':
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return "", false
			}
			stack = stack[:len(stack)-1]
			expectValue = false
			markGood(i)
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return "", false
			}
			stack = stack[:len(stack)-1]
			expectValue = false
			markGood(i)
		case ':':
			expectValue = true
		case ',':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				expectValue = true
			} else {
				expectValue = false
			}
		default:
			// Numbers, true/false/null. Mark completion at the literal's last
			// character if the next byte ends the value cleanly.
			if expectValue && !isSpace(c) {
				end := i
				for end+1 < len(raw) && isLiteralChar(raw[end+1]) {
					end++
				}
				if end+1 < len(raw) {
					expectValue = false
					markGood(end)
				}
				i = end
			}
		}
	}

	if lastGood <= 0 {
		return "", false
	}

	repaired := strings.TrimRight(raw[:lastGood], ", \n\t")
	for j := len(goodDepth) - 1; j >= 0; j-- {
		if goodDepth[j] == '{' {
			repaired += "}"
		} else {
			repaired += "]"
		}
	}
	return repaired, true
}

// stripFences removes a markdown code fence the model sometimes wraps its
// JSON in despite instructions.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLiteralChar(c byte) bool {
	return c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
}
