package form

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotBraceArray is returned when the input is not wrapped in braces.
var ErrNotBraceArray = errors.New("form: value is not a brace array literal")

// ParseBraceArray decodes a one dimensional array literal such as {a,b,c} or
// {"x, y",z}. Unquoted elements are trimmed; quoted elements keep their
// content with backslash escapes resolved. {} yields an empty slice.
func ParseBraceArray(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, ErrNotBraceArray
	}
	body := s[1 : len(s)-1]
	out := []string{}
	if strings.TrimSpace(body) == "" {
		return out, nil
	}

	i := 0
	for {
		for i < len(body) && isSpace(body[i]) {
			i++
		}
		if i >= len(body) {
			return nil, fmt.Errorf("form: brace array %q: missing element", raw)
		}

		var elem string
		if body[i] == '"' {
			var b strings.Builder
			i++
			closed := false
			for i < len(body) {
				c := body[i]
				if c == '\\' {
					if i+1 >= len(body) {
						break
					}
					b.WriteByte(body[i+1])
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				b.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("form: brace array %q: unterminated quote", raw)
			}
			for i < len(body) && isSpace(body[i]) {
				i++
			}
			elem = b.String()
		} else {
			start := i
			for i < len(body) && body[i] != ',' {
				switch body[i] {
				case '"', '{', '}', '\\':
					return nil, fmt.Errorf("form: brace array %q: unexpected %q", raw, body[i])
				}
				i++
			}
			elem = strings.TrimSpace(body[start:i])
			if elem == "" {
				return nil, fmt.Errorf("form: brace array %q: empty element", raw)
			}
		}
		out = append(out, elem)

		if i >= len(body) {
			return out, nil
		}
		if body[i] != ',' {
			return nil, fmt.Errorf("form: brace array %q: expected comma", raw)
		}
		i++
	}
}

// FormatBraceArray encodes values as an array literal, quoting elements that
// would not survive ParseBraceArray unquoted.
func FormatBraceArray(values []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, value := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		if !needsQuoting(value) {
			b.WriteString(value)
			continue
		}
		b.WriteByte('"')
		for j := 0; j < len(value); j++ {
			if value[j] == '"' || value[j] == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(value[j])
		}
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

func needsQuoting(value string) bool {
	if value == "" || strings.EqualFold(value, "null") {
		return true
	}
	if strings.TrimSpace(value) != value {
		return true
	}
	return strings.ContainsAny(value, "{},\"\\ \t\n")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
