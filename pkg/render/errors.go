package render

import (
	"strings"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/schema"
)

// ErrorMapping splits a remote error payload into field-level messages keyed
// by schema field name and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// errorPathWrappers are envelope segments the management API puts in front
// of a field name.
var errorPathWrappers = map[string]struct{}{
	"body":    {},
	"data":    {},
	"payload": {},
	"request": {},
}

// MapErrorPayload attributes messages from a management API error payload to
// schema fields. Keys are dotted or slash separated paths ("body.name",
// "/data/name", "#/tags/0"); envelope segments are skipped and the next
// segment names the field. Anything else is kept as a form level error so
// messages are not lost.
func MapErrorPayload(s *schema.Schema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	for path, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		name := errorPathField(path)
		if name == "" || !s.Has(name) {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[name] = append(mapping.Fields[name], messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// errorPathField returns the first segment of path after any envelope
// segments, or "" for form level keys.
func errorPathField(path string) string {
	segments := strings.FieldsFunc(strings.TrimPrefix(strings.TrimSpace(path), "#"), func(r rune) bool {
		return r == '.' || r == '/'
	})
	for _, segment := range segments {
		if _, wrapper := errorPathWrappers[strings.ToLower(segment)]; wrapper {
			continue
		}
		if isFormLevelKey(segment) {
			return ""
		}
		return segment
	}
	return ""
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ValidationMessages extracts per-field messages from a *form.ValidationError
// in the shape accepted by RenderOptions.Errors. Other errors yield nil.
func ValidationMessages(err error) map[string][]string {
	verr, ok := form.AsValidationError(err)
	if !ok {
		return nil
	}
	out := make(map[string][]string)
	for name, messages := range verr.Fields() {
		if normalized := normalizeMessages(messages); len(normalized) > 0 {
			out[name] = normalized
		}
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", "form", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}
