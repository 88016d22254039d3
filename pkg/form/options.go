package form

import (
	"io"
	"log/slog"
	"strings"
)

// Change describes a user driven edit of a single field.
type Change struct {
	Field    string
	Value    any
	Previous any
}

// ChangeHandler observes user edits. It is never invoked for values applied
// by Reset.
type ChangeHandler func(Change)

// Option configures a Form.
type Option func(*Form)

// WithChangeHandler registers a handler for user edits.
func WithChangeHandler(fn ChangeHandler) Option {
	return func(f *Form) {
		f.onChange = fn
	}
}

// WithLogger routes debug output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithID pins the form instance identifier instead of generating one.
func WithID(id string) Option {
	return func(f *Form) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			f.id = trimmed
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
