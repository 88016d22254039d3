package form

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmitting is returned when Submit is called while a previous submission
// is still running.
var ErrSubmitting = errors.New("form: submission already in progress")

// Issue codes attached to validation issues.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeInvalidEnum = "invalid_enum"
	CodeTooSmall    = "too_small"
	CodeTooBig      = "too_big"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodePattern     = "pattern"
)

// CoercionError reports raw input that cannot be read as the field's type.
// The input is kept on the form so the user can correct it.
type CoercionError struct {
	Field   string
	Input   string
	Message string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("form: field %q: %s", e.Field, e.Message)
}

// Issue is a single field level validation message.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError aggregates every issue found at submit time.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "form: validation failed"
	}
	const maxShown = 3
	var b strings.Builder
	b.WriteString("form: validation failed: ")
	for i, issue := range e.Issues {
		if i == maxShown {
			fmt.Fprintf(&b, "; ... (total %d)", len(e.Issues))
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", issue.Field, issue.Message)
	}
	return b.String()
}

// Fields groups messages by field name, preserving issue order.
func (e *ValidationError) Fields() map[string][]string {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range e.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// For returns the issues attributed to a field.
func (e *ValidationError) For(field string) []Issue {
	if e == nil {
		return nil
	}
	var out []Issue
	for _, issue := range e.Issues {
		if issue.Field == field {
			out = append(out, issue)
		}
	}
	return out
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
