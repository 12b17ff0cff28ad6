package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validator checks a decoded value. A nil Validator accepts everything.
type Validator[T any] func(T) error

// ExtractJSON decodes the first JSON object in raw model output into T.
// It tolerates markdown fences, prose around the object, comments and
// numbers written as ".5". Any failure wraps ErrInvalidOutput.
func ExtractJSON[T any](raw string, validate Validator[T]) (T, error) {
	var out T

	block, ok := firstObject(raw)
	if !ok {
		return out, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}
	if err := json.Unmarshal([]byte(sanitizeJSON(block)), &out); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validate != nil {
		if err := validate(out); err != nil {
			var zero T
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return out, nil
}

// jsonLexer tracks whether a byte position is inside a JSON string.
type jsonLexer struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether it is structural (outside strings
// and not a quote).
func (l *jsonLexer) step(c byte) bool {
	switch {
	case l.escaped:
		l.escaped = false
		return false
	case l.inString && c == '\\':
		l.escaped = true
		return false
	case c == '"':
		l.inString = !l.inString
		return false
	default:
		return !l.inString
	}
}

// firstObject returns the first balanced {...} block in s. Fence lines
// need no special handling since they sit outside the braces.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	var lex jsonLexer
	depth := 0
	for i := start; i < len(s); i++ {
		if !lex.step(s[i]) {
			continue
		}
		switch s[i] {
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

// sanitizeJSON drops // and /* */ comments and rewrites ".5" and "-.5"
// as "0.5" and "-0.5", leaving string contents untouched.
func sanitizeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	var lex jsonLexer
	var prev byte // last non-space structural byte written

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !lex.step(c) {
			b.WriteByte(c)
			if c == '"' {
				prev = c
			}
			continue
		}

		if c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i+1 < len(s) && s[i+1] != '\n' {
					i++
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					i = len(s)
				} else {
					i += 2 + end + 1
				}
				continue
			}
		}

		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(prev) {
			b.WriteByte('0')
		}
		b.WriteByte(c)
		if !isSpace(c) {
			prev = c
		}
	}
	return b.String()
}

func startsNumber(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\n' || c == '\r' || c == '\t' }
