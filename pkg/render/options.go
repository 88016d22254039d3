package render

// RenderOptions describe per-request data that renderers and BuildView use to
// customise output without touching the form state.
type RenderOptions struct {
	// Labels overrides display text for fields and enum options. Fields
	// without an entry fall back to the raw field name.
	Labels LabelMetadata
	// Columns carries advisory column metadata. It never overrides the
	// schema's own nullable flag.
	Columns ColumnMetadata
	// Labeler derives a fallback label when Labels has no entry. The raw
	// field name is used when nil.
	Labeler Labeler
	// Errors surfaces server-side feedback keyed by field name, typically
	// the Fields of an ErrorMapping.
	Errors map[string][]string
	// FormErrors are messages not attributable to a field.
	FormErrors []string
	// Hidden inputs emitted alongside the visible fields.
	Hidden map[string]string

	Title       string
	Action      string
	Method      string
	SubmitLabel string
}

// Labeler maps a field name to a display label.
type Labeler func(name string) string
