package openapi

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-recordform/pkg/schema"
)

// extensionNamespace holds per-property form hints:
//
//	x-recordform:
//	  order: 2
//	  effects: [trim]
const extensionNamespace = "x-recordform"

type property struct {
	name  string
	ref   *openapi3.SchemaRef
	order int
	// ordered is false when no explicit order was declared.
	ordered bool
}

// fromObject converts an object schema into a form schema. Properties marked
// readOnly are skipped. Explicitly ordered properties come first, the rest
// follow by name.
func fromObject(ref *openapi3.SchemaRef) (*schema.Schema, error) {
	if ref == nil || ref.Value == nil {
		return nil, &schema.SchemaError{Message: "openapi: schema reference is unresolved"}
	}

	props := make(map[string]*openapi3.SchemaRef)
	required := make(map[string]bool)
	collectObject(ref.Value, props, required)
	if len(props) == 0 {
		return nil, &schema.SchemaError{Message: fmt.Sprintf("openapi: %s declares no properties", refLabel(ref))}
	}

	ordered := make([]property, 0, len(props))
	for name, prop := range props {
		if prop == nil || prop.Value == nil || prop.Value.ReadOnly {
			continue
		}
		p := property{name: name, ref: prop}
		p.order, p.ordered = extensionOrder(prop.Value.Extensions)
		ordered = append(ordered, p)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.ordered != b.ordered {
			return a.ordered
		}
		if a.ordered && a.order != b.order {
			return a.order < b.order
		}
		return a.name < b.name
	})

	fields := make([]schema.Field, 0, len(ordered))
	for _, p := range ordered {
		field, err := toField(p.name, p.ref.Value, required[p.name])
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return schema.New(fields...)
}

func collectObject(s *openapi3.Schema, props map[string]*openapi3.SchemaRef, required map[string]bool) {
	for _, part := range s.AllOf {
		if part != nil && part.Value != nil {
			collectObject(part.Value, props, required)
		}
	}
	for name, prop := range s.Properties {
		props[name] = prop
	}
	for _, name := range s.Required {
		required[name] = true
	}
}

func toField(name string, s *openapi3.Schema, required bool) (schema.Field, error) {
	base, nullable := baseType(s)

	t := base
	for _, effect := range extensionEffects(s.Extensions) {
		t = schema.Effects(t, effect)
	}
	if s.Default != nil {
		value, err := schema.CoerceDefault(name, base, s.Default)
		if err != nil {
			return schema.Field{}, err
		}
		t = schema.WithDefault(t, value)
	}
	if nullable {
		t = schema.Nullable(t)
	}
	if !required {
		t = schema.Optional(t)
	}

	field := schema.Field{
		Name:        name,
		Type:        t,
		Description: strings.TrimSpace(s.Description),
	}
	field.Validations = rules(base, s)
	return field, nil
}

// baseType maps the property's type to a base kind. The second result reports
// whether null is permitted, either via nullable or a "null" type entry.
func baseType(s *openapi3.Schema) (*schema.Type, bool) {
	var (
		types    []string
		nullable = s.Nullable
	)
	if s.Type != nil {
		for _, typ := range s.Type.Slice() {
			if typ == "null" {
				nullable = true
				continue
			}
			types = append(types, typ)
		}
	}

	if len(types) > 1 {
		return schema.Opaque(strings.Join(types, "|")), nullable
	}
	typ := ""
	if len(types) == 1 {
		typ = types[0]
	}

	switch typ {
	case openapi3.TypeString, "":
		if len(s.Enum) > 0 {
			options := enumOptions(s.Enum)
			if len(options) > 0 {
				return schema.Enum(options...), nullable || hasNilOption(s.Enum)
			}
		}
		if typ == "" {
			return schema.Opaque("any"), nullable
		}
		if s.Format == "binary" {
			return schema.Opaque("binary"), nullable
		}
		return schema.Text(), nullable
	case openapi3.TypeInteger:
		return schema.Integer(), nullable
	case openapi3.TypeBoolean:
		return schema.Boolean(), nullable
	case openapi3.TypeArray:
		if s.Items != nil && s.Items.Value != nil && isString(s.Items.Value) {
			return schema.List(schema.Text()), nullable
		}
		return schema.Opaque(openapi3.TypeArray), nullable
	default:
		name := typ
		if s.Format != "" {
			name = typ + ":" + s.Format
		}
		return schema.Opaque(name), nullable
	}
}

func rules(base *schema.Type, s *openapi3.Schema) []schema.ValidationRule {
	var out []schema.ValidationRule
	switch base.Kind {
	case schema.KindInteger:
		if s.Min != nil {
			out = append(out, schema.MinValueRule(*s.Min))
		}
		if s.Max != nil {
			out = append(out, schema.MaxValueRule(*s.Max))
		}
	case schema.KindText:
		if s.MinLength > 0 {
			out = append(out, schema.MinLengthRule(clampInt(s.MinLength)))
		}
		if s.MaxLength != nil {
			out = append(out, schema.MaxLengthRule(clampInt(*s.MaxLength)))
		}
		if s.Pattern != "" {
			out = append(out, schema.PatternRule(s.Pattern))
		}
	case schema.KindList:
		if s.MinItems > 0 {
			out = append(out, schema.MinLengthRule(clampInt(s.MinItems)))
		}
		if s.MaxItems != nil {
			out = append(out, schema.MaxLengthRule(clampInt(*s.MaxItems)))
		}
	}
	return out
}

func isString(s *openapi3.Schema) bool {
	if s.Type == nil {
		return false
	}
	for _, typ := range s.Type.Slice() {
		if typ == openapi3.TypeString {
			return true
		}
	}
	return false
}

func enumOptions(values []any) []string {
	options := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			options = append(options, s)
		}
	}
	return options
}

func hasNilOption(values []any) bool {
	for _, v := range values {
		if v == nil {
			return true
		}
	}
	return false
}

func extensionOrder(ext map[string]any) (int, bool) {
	ns, ok := ext[extensionNamespace].(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := ns["order"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func extensionEffects(ext map[string]any) []string {
	ns, ok := ext[extensionNamespace].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := ns["effects"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func clampInt(v uint64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func refLabel(ref *openapi3.SchemaRef) string {
	if ref.Ref != "" {
		return ref.Ref
	}
	return "schema"
}
