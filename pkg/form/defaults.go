package form

import "github.com/goliatone/go-recordform/pkg/schema"

// DefaultValues returns one entry per schema field. Declared defaults win;
// otherwise the base type decides the fallback.
func DefaultValues(s *schema.Schema) ValueSet {
	out := make(ValueSet, s.Len())
	for _, name := range s.Names() {
		desc, _ := s.Descriptor(name)
		if desc.HasDefault() {
			out[name] = declaredDefault(desc)
			continue
		}
		out[name] = typeFallback(desc.Base)
	}
	return out
}

// declaredDefault resolves a declared default into its in-memory shape so an
// integer default of 3600 is held as int64.
func declaredDefault(desc schema.Descriptor) any {
	value := desc.Default.Resolve()
	switch desc.Base.Kind {
	case schema.KindInteger:
		if n, ok := integerValue(value); ok {
			return n
		}
	case schema.KindList:
		if list, ok := stringSlice(value, true); ok {
			return list
		}
	}
	return cloneValue(value)
}

func typeFallback(base schema.Type) any {
	switch base.Kind {
	case schema.KindText:
		return ""
	case schema.KindBoolean:
		return false
	case schema.KindEnum:
		return firstOption(base)
	case schema.KindInteger:
		return int64(0)
	case schema.KindList:
		return []string{}
	default:
		return Undefined
	}
}

func firstOption(base schema.Type) string {
	if len(base.Options) == 0 {
		return ""
	}
	return base.Options[0]
}
