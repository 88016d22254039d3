package schema

import "fmt"

// SchemaError reports a malformed schema. It is a construction-time defect
// and is never recovered from inside the engine.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return "schema: <nil>"
	}
	if e.Field == "" {
		return "schema: " + e.Message
	}
	return fmt.Sprintf("schema: field %q: %s", e.Field, e.Message)
}

func schemaErrorf(field, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, Message: fmt.Sprintf(format, args...)}
}
