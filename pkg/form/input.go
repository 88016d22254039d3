package form

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-recordform/pkg/schema"
)

// coerceInput turns raw edit text into the stored value for the base type.
// A non-nil error is field local: the returned value is still stored.
func coerceInput(field string, base schema.Type, raw string, previous any) (any, *CoercionError) {
	switch base.Kind {
	case schema.KindText:
		return raw, nil
	case schema.KindInteger:
		return coerceIntegerInput(field, raw)
	case schema.KindBoolean:
		b, ok := parseToggle(raw)
		if !ok {
			keep, _ := previous.(bool)
			return keep, &CoercionError{Field: field, Input: raw, Message: "Expected true or false"}
		}
		return b, nil
	case schema.KindEnum:
		if !hasOption(base, raw) {
			return raw, &CoercionError{Field: field, Input: raw, Message: "Not one of the available options"}
		}
		return raw, nil
	case schema.KindList:
		return coerceListInput(field, raw)
	default:
		return previous, &CoercionError{Field: field, Input: raw, Message: "Field is not editable"}
	}
}

func coerceIntegerInput(field, raw string) (any, *CoercionError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Undefined, nil
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined, &CoercionError{Field: field, Input: raw, Message: "Expected a number"}
	}
	if f != math.Trunc(f) {
		return Undefined, &CoercionError{Field: field, Input: raw, Message: "Expected a whole number"}
	}
	n, ok := toInt64(f)
	if !ok {
		return Undefined, &CoercionError{Field: field, Input: raw, Message: "Number is out of range"}
	}
	return n, nil
}

func coerceListInput(field, raw string) (any, *CoercionError) {
	if raw == "" {
		return nil, nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw, &CoercionError{Field: field, Input: raw, Message: "Invalid JSON"}
	}
	items, ok := parsed.([]any)
	if !ok {
		return raw, &CoercionError{Field: field, Input: raw, Message: "Expected a JSON array"}
	}
	if list, ok := stringSlice(items, true); ok {
		return list, nil
	}
	return items, nil
}

func parseToggle(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "0", "off", "no", "n", "f":
		return false, true
	case "true", "1", "on", "yes", "y", "t":
		return true, true
	default:
		return false, false
	}
}

// ListInputText renders a list value as the JSON array text used for editing.
// nil renders as the empty string.
func ListInputText(value any) string {
	switch t := value.(type) {
	case nil, UndefinedValue:
		return ""
	case string:
		return t
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(data)
}
