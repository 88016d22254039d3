package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Schema is an ordered, immutable set of uniquely named fields.
type Schema struct {
	fields      []Field
	descriptors []Descriptor
	index       map[string]int
}

// New validates the fields and builds a Schema preserving their order.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields:      make([]Field, 0, len(fields)),
		descriptors: make([]Descriptor, 0, len(fields)),
		index:       make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, schemaErrorf("", "field name is required")
		}
		if _, exists := s.index[name]; exists {
			return nil, schemaErrorf(name, "duplicate field name")
		}
		desc, err := describe(name, field.Type)
		if err != nil {
			return nil, err
		}
		if err := validateBase(name, desc.Base); err != nil {
			return nil, err
		}
		if err := validateRules(name, field.Validations); err != nil {
			return nil, err
		}
		if err := validateDefault(name, desc); err != nil {
			return nil, err
		}
		field.Name = name
		s.index[name] = len(s.fields)
		s.fields = append(s.fields, field)
		s.descriptors = append(s.descriptors, desc)
	}
	return s, nil
}

// MustNew panics when the schema is malformed. Intended for fixtures and
// package-level schema declarations.
func MustNew(fields ...Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.fields))
	for i, field := range s.fields {
		names[i] = field.Name
	}
	return names
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	idx, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[idx], true
}

// Descriptor returns the unwrapped descriptor computed at construction.
func (s *Schema) Descriptor(name string) (Descriptor, bool) {
	if s == nil {
		return Descriptor{}, false
	}
	idx, ok := s.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.descriptors[idx], true
}

// Has reports whether the schema declares the field.
func (s *Schema) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

func validateBase(field string, base Type) error {
	switch base.Kind {
	case KindList:
		elem, err := describe(field, base.Elem)
		if err != nil {
			return schemaErrorf(field, "list element type is malformed")
		}
		if elem.Base.Kind != KindText {
			return schemaErrorf(field, "list elements must be text, got %s", elem.Base.Kind)
		}
	case KindEnum:
		seen := make(map[string]struct{}, len(base.Options))
		for _, option := range base.Options {
			if _, dup := seen[option]; dup {
				return schemaErrorf(field, "duplicate enum option %q", option)
			}
			seen[option] = struct{}{}
		}
	}
	return nil
}

func validateRules(field string, rules []ValidationRule) error {
	for _, rule := range rules {
		switch rule.Kind {
		case ValidationRuleMin, ValidationRuleMax:
			if _, err := strconv.ParseFloat(rule.Params["value"], 64); err != nil {
				return schemaErrorf(field, "%s rule requires a numeric value", rule.Kind)
			}
		case ValidationRuleMinLength, ValidationRuleMaxLength:
			if n, err := strconv.Atoi(rule.Params["value"]); err != nil || n < 0 {
				return schemaErrorf(field, "%s rule requires a non-negative integer", rule.Kind)
			}
		case ValidationRulePattern:
			if _, err := regexp.Compile(rule.Params["pattern"]); err != nil {
				return schemaErrorf(field, "pattern rule: %v", err)
			}
		default:
			return schemaErrorf(field, "unknown validation rule %q", rule.Kind)
		}
	}
	return nil
}

// validateDefault checks a static default against the base type. Lazy
// defaults are resolved per use and are not checked here.
func validateDefault(field string, desc Descriptor) error {
	if desc.Default == nil || desc.Default.Func != nil {
		return nil
	}
	value := desc.Default.Value
	if value == nil {
		if desc.Nullable {
			return nil
		}
		return schemaErrorf(field, "null default on a non-nullable field")
	}
	_, err := CoerceDefault(field, &desc.Base, value)
	return err
}
