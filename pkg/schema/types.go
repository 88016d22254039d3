package schema

// Kind tags a Type variant. Base kinds terminate unwrapping; wrapper kinds
// carry an inner type.
type Kind string

const (
	KindText    Kind = "text"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindList    Kind = "list"
	// KindOpaque is a recognised base kind outside the editable set (dates,
	// json blobs, ...). Renderers emit an empty placeholder for it.
	KindOpaque Kind = "opaque"

	KindOptional Kind = "optional"
	KindNullable Kind = "nullable"
	KindDefault  Kind = "default"
	// KindEffects wraps transformations or refinements that preserve the inner
	// base type.
	KindEffects Kind = "effects"
)

// IsBase reports whether the kind is a terminal primitive.
func (k Kind) IsBase() bool {
	switch k {
	case KindText, KindInteger, KindBoolean, KindEnum, KindList, KindOpaque:
		return true
	default:
		return false
	}
}

// IsWrapper reports whether the kind wraps another type.
func (k Kind) IsWrapper() bool {
	switch k {
	case KindOptional, KindNullable, KindDefault, KindEffects:
		return true
	default:
		return false
	}
}

// Type is the tagged variant describing a field type. Only the members
// relevant to Kind are populated.
type Type struct {
	Kind Kind `json:"kind"`
	// Options lists the closed choice set of an enum, in declaration order.
	Options []string `json:"options,omitempty"`
	// Elem is the element type of a list.
	Elem *Type `json:"elem,omitempty"`
	// Inner is the wrapped type of optional/nullable/default/effects.
	Inner *Type `json:"inner,omitempty"`
	// Default holds the declared default of a KindDefault wrapper.
	Default *Default `json:"-"`
	// Name labels opaque types and effects wrappers.
	Name string `json:"name,omitempty"`
}

// HasOption reports whether value is one of the enum options.
func (t Type) HasOption(value string) bool {
	for _, option := range t.Options {
		if option == value {
			return true
		}
	}
	return false
}

// Default is a declared default value. When Func is set the value is computed
// lazily on every resolution.
type Default struct {
	Value any
	Func  func() any
}

// Resolve returns the default value, invoking Func when present.
func (d *Default) Resolve() any {
	if d == nil {
		return nil
	}
	if d.Func != nil {
		return d.Func()
	}
	return d.Value
}

// Text returns a freeform string type.
func Text() *Type { return &Type{Kind: KindText} }

// Integer returns a whole number type.
func Integer() *Type { return &Type{Kind: KindInteger} }

// Boolean returns a true/false type.
func Boolean() *Type { return &Type{Kind: KindBoolean} }

// Enum returns a closed choice type over the provided options.
func Enum(options ...string) *Type {
	return &Type{Kind: KindEnum, Options: append([]string(nil), options...)}
}

// List returns an ordered sequence type. Only Text elements are supported by
// New; other element types are reported as schema errors.
func List(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

// Opaque returns a base type the engine carries without editing it.
func Opaque(name string) *Type { return &Type{Kind: KindOpaque, Name: name} }

// Optional marks the inner type as omittable.
func Optional(inner *Type) *Type { return &Type{Kind: KindOptional, Inner: inner} }

// Nullable marks the inner type as accepting an explicit null.
func Nullable(inner *Type) *Type { return &Type{Kind: KindNullable, Inner: inner} }

// WithDefault attaches a static default to the inner type.
func WithDefault(inner *Type, value any) *Type {
	return &Type{Kind: KindDefault, Inner: inner, Default: &Default{Value: value}}
}

// WithDefaultFunc attaches a lazily computed default to the inner type.
func WithDefaultFunc(inner *Type, fn func() any) *Type {
	return &Type{Kind: KindDefault, Inner: inner, Default: &Default{Func: fn}}
}

// Effects wraps the inner type in a named transformation that keeps its base.
func Effects(inner *Type, name string) *Type {
	return &Type{Kind: KindEffects, Inner: inner, Name: name}
}

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single constraint applied to a field. Numeric
// bounds and length limits encode their threshold in Params["value"] while
// pattern rules keep the expression in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field is a named entry of a Schema.
type Field struct {
	Name        string           `json:"name"`
	Type        *Type            `json:"type"`
	Description string           `json:"description,omitempty"`
	Validations []ValidationRule `json:"validations,omitempty"`
}

// Descriptor is the flattened view of a field type: its base plus the
// modifiers collected while unwrapping.
type Descriptor struct {
	Base     Type
	Optional bool
	Nullable bool
	Default  *Default
}

// HasDefault reports whether a default was declared anywhere in the chain.
func (d Descriptor) HasDefault() bool {
	return d.Default != nil
}
