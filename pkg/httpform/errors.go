package httpform

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors is returned by a submit handler when the remote side rejected
// the values. Keys are error paths ("body.site_url", "/data/jwt_exp", "form")
// mapped onto fields with render.MapErrorPayload.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(e[key], "; ")))
	}
	return "httpform: submission rejected: " + strings.Join(parts, ", ")
}
