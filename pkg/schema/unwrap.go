package schema

// MaxWrapDepth bounds wrapper nesting. Deeper chains are treated as cyclic.
const MaxWrapDepth = 32

// Unwrap strips optional, nullable, default and effects wrappers until a base
// type is reached. Wrapper order does not matter and unwrapping a base type
// returns it unchanged.
func Unwrap(t *Type) (Type, error) {
	desc, err := describe("", t)
	if err != nil {
		return Type{}, err
	}
	return desc.Base, nil
}

// Describe unwraps t and records the modifiers found on the way down. The
// outermost declared default wins.
func Describe(t *Type) (Descriptor, error) {
	return describe("", t)
}

func describe(field string, t *Type) (Descriptor, error) {
	var desc Descriptor
	current := t
	for depth := 0; ; depth++ {
		if current == nil {
			return Descriptor{}, schemaErrorf(field, "type descriptor is missing")
		}
		if depth > MaxWrapDepth {
			return Descriptor{}, schemaErrorf(field, "type nesting exceeds %d levels", MaxWrapDepth)
		}
		switch {
		case current.Kind.IsBase():
			desc.Base = *current
			return desc, nil
		case current.Kind.IsWrapper():
			switch current.Kind {
			case KindOptional:
				desc.Optional = true
			case KindNullable:
				desc.Nullable = true
			case KindDefault:
				if current.Default == nil {
					return Descriptor{}, schemaErrorf(field, "default wrapper without a value")
				}
				if desc.Default == nil {
					desc.Default = current.Default
				}
			}
			if current.Inner == nil {
				return Descriptor{}, schemaErrorf(field, "%s wrapper has no inner type", current.Kind)
			}
			current = current.Inner
		default:
			return Descriptor{}, schemaErrorf(field, "unknown type kind %q", current.Kind)
		}
	}
}
