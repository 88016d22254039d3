package form

import (
	"strings"

	"github.com/goliatone/go-recordform/pkg/schema"
)

// NormalizeInitialValues merges a loosely typed record into a ValueSet shaped
// for the schema. Every schema field receives exactly one entry; keys unknown
// to the schema are dropped. Declared defaults are not applied: a field
// missing from raw gets its type fallback.
func NormalizeInitialValues(s *schema.Schema, raw map[string]any) ValueSet {
	out := make(ValueSet, s.Len())
	for _, name := range s.Names() {
		desc, _ := s.Descriptor(name)
		value, present := raw[name]
		if !present {
			value = Undefined
		}
		out[name] = normalizeValue(desc.Base, value)
	}
	return out
}

func normalizeValue(base schema.Type, value any) any {
	switch base.Kind {
	case schema.KindBoolean:
		return truthy(value)
	case schema.KindText:
		return toText(value)
	case schema.KindEnum:
		s, ok := value.(string)
		if !ok || !hasOption(base, s) {
			return firstOption(base)
		}
		return s
	case schema.KindInteger:
		f, ok := toNumber(value)
		if !ok {
			return int64(0)
		}
		n, ok := toInt64(f)
		if !ok {
			return int64(0)
		}
		return n
	case schema.KindList:
		return normalizeList(value)
	default:
		return value
	}
}

func normalizeList(value any) []string {
	if list, ok := stringSlice(value, false); ok {
		return list
	}
	text, ok := value.(string)
	if !ok {
		return []string{}
	}
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return []string{}
	}
	parsed, err := ParseBraceArray(trimmed)
	if err != nil {
		return []string{}
	}
	return parsed
}

func hasOption(base schema.Type, value string) bool {
	return base.HasOption(value)
}
