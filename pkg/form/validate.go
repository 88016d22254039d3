package form

import (
	"fmt"
	"math"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-recordform/pkg/schema"
)

// Validate checks values against the schema and returns the normalised output
// holding only declared shapes. Absent optional fields with a declared
// default receive that default; Undefined entries count as absent. Any issue
// yields a *ValidationError and no output.
func Validate(s *schema.Schema, values ValueSet) (ValueSet, error) {
	out := make(ValueSet, s.Len())
	var issues []Issue

	for _, field := range s.Fields() {
		desc, _ := s.Descriptor(field.Name)
		value, present := values[field.Name]
		if present && IsUndefined(value) {
			present = false
		}

		if !present {
			switch {
			case desc.HasDefault():
				value = cloneValue(desc.Default.Resolve())
			case desc.Optional:
				continue
			default:
				issues = append(issues, Issue{Field: field.Name, Code: CodeRequired, Message: "Required"})
				continue
			}
		}

		if value == nil {
			if desc.Nullable {
				out[field.Name] = nil
				continue
			}
			issues = append(issues, Issue{
				Field:   field.Name,
				Code:    CodeInvalidType,
				Message: fmt.Sprintf("Expected %s, received null", expectedName(desc.Base)),
			})
			continue
		}

		checked, fieldIssues := checkValue(field, desc, value)
		if len(fieldIssues) > 0 {
			issues = append(issues, fieldIssues...)
			continue
		}
		out[field.Name] = checked
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return out, nil
}

func checkValue(field schema.Field, desc schema.Descriptor, value any) (any, []Issue) {
	base := desc.Base
	rules := field.Constraints()
	issue := func(code, format string, args ...any) []Issue {
		return []Issue{{Field: field.Name, Code: code, Message: fmt.Sprintf(format, args...)}}
	}

	switch base.Kind {
	case schema.KindText:
		s, ok := value.(string)
		if !ok {
			return nil, issue(CodeInvalidType, "Expected string, received %s", receivedName(value))
		}
		if s == "" && !desc.Optional {
			return nil, issue(CodeRequired, "Required")
		}
		var out []Issue
		length := len([]rune(s))
		if rules.MinLength != nil && length < *rules.MinLength {
			out = append(out, issue(CodeTooShort, "String must contain at least %d character(s)", *rules.MinLength)...)
		}
		if rules.MaxLength != nil && length > *rules.MaxLength {
			out = append(out, issue(CodeTooLong, "String must contain at most %d character(s)", *rules.MaxLength)...)
		}
		if rules.Pattern != nil && s != "" && !rules.Pattern.MatchString(s) {
			out = append(out, issue(CodePattern, "Invalid format")...)
		}
		return s, out

	case schema.KindInteger:
		n, ok := integerValue(value)
		if !ok {
			return nil, issue(CodeInvalidType, "Expected integer, received %s", receivedName(value))
		}
		var out []Issue
		if rules.Min != nil && float64(n) < *rules.Min {
			out = append(out, issue(CodeTooSmall, "Number must be greater than or equal to %s", formatNumber(*rules.Min))...)
		}
		if rules.Max != nil && float64(n) > *rules.Max {
			out = append(out, issue(CodeTooBig, "Number must be less than or equal to %s", formatNumber(*rules.Max))...)
		}
		return n, out

	case schema.KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, issue(CodeInvalidType, "Expected boolean, received %s", receivedName(value))
		}
		return b, nil

	case schema.KindEnum:
		s, ok := value.(string)
		if !ok || !hasOption(base, s) {
			return nil, issue(CodeInvalidEnum, "Invalid enum value. Expected %s, received '%s'", quoteOptions(base.Options), toText(value))
		}
		return s, nil

	case schema.KindList:
		if _, isText := value.(string); isText {
			return nil, issue(CodeInvalidType, "Expected array, received string")
		}
		list, ok := stringSlice(value, true)
		if !ok {
			if _, isSeq := value.([]any); isSeq {
				return nil, issue(CodeInvalidType, "Expected array of strings")
			}
			return nil, issue(CodeInvalidType, "Expected array, received %s", receivedName(value))
		}
		var out []Issue
		if rules.MinLength != nil && len(list) < *rules.MinLength {
			out = append(out, issue(CodeTooSmall, "Array must contain at least %d element(s)", *rules.MinLength)...)
		}
		if rules.MaxLength != nil && len(list) > *rules.MaxLength {
			out = append(out, issue(CodeTooBig, "Array must contain at most %d element(s)", *rules.MaxLength)...)
		}
		return list, out

	default:
		return value, nil
	}
}

func integerValue(value any) (int64, bool) {
	if n, ok := asInt64(value); ok {
		return n, true
	}
	var f float64
	switch t := value.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return toInt64(f)
}

func expectedName(base schema.Type) string {
	switch base.Kind {
	case schema.KindText:
		return "string"
	case schema.KindList:
		return "array"
	case schema.KindOpaque:
		if base.Name != "" {
			return base.Name
		}
	}
	return string(base.Kind)
}

func receivedName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []string, []any:
		return "array"
	case map[string]any:
		return "object"
	case float32, float64, json.Number:
		return "number"
	}
	if _, ok := asInt64(value); ok {
		return "number"
	}
	return fmt.Sprintf("%T", value)
}

func quoteOptions(options []string) string {
	if len(options) == 0 {
		return "nothing"
	}
	quoted := make([]string, len(options))
	for i, option := range options {
		quoted[i] = "'" + option + "'"
	}
	return strings.Join(quoted, " | ")
}
