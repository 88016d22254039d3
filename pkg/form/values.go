package form

// ValueSet maps field names to their in-memory values: string, int64, bool,
// []string, nil for explicit nulls, or Undefined.
type ValueSet map[string]any

// UndefinedValue marks an entry with no synthesisable or parsable value.
type UndefinedValue struct{}

func (UndefinedValue) String() string { return "undefined" }

// Undefined is the explicit "no value" sentinel.
var Undefined = UndefinedValue{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedValue)
	return ok
}

// Clone returns a shallow copy with list values copied.
func (vs ValueSet) Clone() ValueSet {
	if vs == nil {
		return nil
	}
	out := make(ValueSet, len(vs))
	for key, value := range vs {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []string:
		return append([]string{}, typed...)
	case []any:
		return append([]any{}, typed...)
	default:
		return value
	}
}
