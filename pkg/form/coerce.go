package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// truthy follows loose truthiness: zero values, empty strings, NaN, nil and
// Undefined are false; everything else is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil, UndefinedValue:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		if n, ok := asInt64(v); ok {
			return n != 0
		}
		return true
	}
}

// toText stringifies v. Sequences are comma joined.
func toText(v any) string {
	switch t := v.(type) {
	case nil, UndefinedValue:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case json.Number:
		return t.String()
	case []byte:
		return string(t)
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = toText(item)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return t.String()
	default:
		if n, ok := asInt64(v); ok {
			return strconv.FormatInt(n, 10)
		}
		return fmt.Sprint(v)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toNumber performs loose numeric coercion. The second result is false when
// the outcome is not a finite number.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, true
	case UndefinedValue:
		return 0, false
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	case float32:
		f = float64(t)
	default:
		n, ok := asInt64(v)
		if !ok {
			return 0, false
		}
		return float64(n), true
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toInt64 truncates a finite number into the int64 range.
func toInt64(f float64) (int64, bool) {
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, false
	}
	return int64(t), true
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// stringSlice converts a sequence into []string. The boolean is false when v
// is not a sequence or contains non-string elements and strict is set.
func stringSlice(v any, strict bool) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				if strict {
					return nil, false
				}
				s = toText(item)
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
