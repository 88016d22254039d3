package schema

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Fields []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	TypeName    string   `json:"typeName" yaml:"typeName"`
	Options     []string `json:"options" yaml:"options"`
	Optional    bool     `json:"optional" yaml:"optional"`
	Nullable    bool     `json:"nullable" yaml:"nullable"`
	Default     any      `json:"default" yaml:"default"`
	Description string   `json:"description" yaml:"description"`
	Effects     []string `json:"effects" yaml:"effects"`
	Min         *float64 `json:"min" yaml:"min"`
	Max         *float64 `json:"max" yaml:"max"`
	MinLength   *int     `json:"minLength" yaml:"minLength"`
	MaxLength   *int     `json:"maxLength" yaml:"maxLength"`
	Pattern     string   `json:"pattern" yaml:"pattern"`
}

// LoadFile reads a JSON or YAML schema document from disk.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads a JSON or YAML schema document from fsys.
func LoadFS(fsys fs.FS, path string) (*Schema, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a schema document. JSON is tried first, then YAML. Structural
// problems with the declared fields are returned as *SchemaError.
func Parse(data []byte, source string) (*Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: document %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
		}
	}

	fields := make([]Field, 0, len(doc.Fields))
	for _, raw := range doc.Fields {
		field, err := raw.toField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return New(fields...)
}

func (f fieldFile) toField() (Field, error) {
	name := strings.TrimSpace(f.Name)
	base, err := baseFromName(name, f)
	if err != nil {
		return Field{}, err
	}

	t := base
	for _, effect := range f.Effects {
		t = Effects(t, strings.TrimSpace(effect))
	}
	if f.Default != nil {
		value, err := CoerceDefault(name, base, f.Default)
		if err != nil {
			return Field{}, err
		}
		t = WithDefault(t, value)
	}
	if f.Nullable {
		t = Nullable(t)
	}
	if f.Optional {
		t = Optional(t)
	}

	field := Field{
		Name:        name,
		Type:        t,
		Description: strings.TrimSpace(f.Description),
	}
	if f.Min != nil {
		field.Validations = append(field.Validations, MinValueRule(*f.Min))
	}
	if f.Max != nil {
		field.Validations = append(field.Validations, MaxValueRule(*f.Max))
	}
	if f.MinLength != nil {
		field.Validations = append(field.Validations, MinLengthRule(*f.MinLength))
	}
	if f.MaxLength != nil {
		field.Validations = append(field.Validations, MaxLengthRule(*f.MaxLength))
	}
	if f.Pattern != "" {
		field.Validations = append(field.Validations, PatternRule(f.Pattern))
	}
	return field, nil
}

func baseFromName(field string, f fieldFile) (*Type, error) {
	switch strings.ToLower(strings.TrimSpace(f.Type)) {
	case "text", "string":
		if len(f.Options) > 0 {
			return Enum(f.Options...), nil
		}
		return Text(), nil
	case "integer", "int":
		return Integer(), nil
	case "boolean", "bool":
		return Boolean(), nil
	case "enum":
		return Enum(f.Options...), nil
	case "list", "array":
		return List(Text()), nil
	case "opaque":
		name := strings.TrimSpace(f.TypeName)
		if name == "" {
			name = "opaque"
		}
		return Opaque(name), nil
	case "":
		return nil, schemaErrorf(field, "type is required")
	default:
		return nil, schemaErrorf(field, "unsupported type %q", f.Type)
	}
}

// CoerceDefault converts a decoded document value (JSON or YAML) into the
// canonical default for base: int64 for integers, []string for lists.
func CoerceDefault(field string, base *Type, value any) (any, error) {
	switch base.Kind {
	case KindText:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case KindEnum:
		if s, ok := value.(string); ok {
			if !base.HasOption(s) {
				return nil, schemaErrorf(field, "default %q is not one of the options", s)
			}
			return s, nil
		}
	case KindBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case KindInteger:
		switch n := value.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case uint32:
			return int64(n), nil
		case uint64:
			if n <= math.MaxInt64 {
				return int64(n), nil
			}
		case float64:
			if n != math.Trunc(n) || math.IsNaN(n) {
				break
			}
			if n < math.MinInt64 || n >= math.MaxInt64 {
				return nil, schemaErrorf(field, "default %v is out of integer range", n)
			}
			return int64(n), nil
		}
	case KindList:
		if list, ok := value.([]string); ok {
			return append([]string(nil), list...), nil
		}
		items, ok := value.([]any)
		if !ok {
			break
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, schemaErrorf(field, "list default elements must be strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return value, nil
	}
	return nil, schemaErrorf(field, "default %v does not match type %s", value, base.Kind)
}
