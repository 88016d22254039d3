package render

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Label is the display annotation for one field. Options maps raw enum
// values to display text; the raw value is still what gets stored.
type Label struct {
	Text    string            `json:"label" yaml:"label"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// UnmarshalJSON accepts either a plain string or {label, options}.
func (l *Label) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*l = Label{Text: text}
		return nil
	}
	type plain Label
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*l = Label(decoded)
	return nil
}

// UnmarshalYAML accepts either a scalar or a {label, options} mapping.
func (l *Label) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = Label{Text: node.Value}
		return nil
	}
	type plain Label
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*l = Label(decoded)
	return nil
}

// LabelMetadata maps field names to display annotations.
type LabelMetadata map[string]Label

// FieldLabel returns the configured label for name, if any.
func (m LabelMetadata) FieldLabel(name string) (string, bool) {
	label, ok := m[name]
	if !ok || strings.TrimSpace(label.Text) == "" {
		return "", false
	}
	return label.Text, true
}

// OptionLabel returns the display text for an enum value, falling back to
// the value itself.
func (m LabelMetadata) OptionLabel(name, value string) string {
	if label, ok := m[name]; ok {
		if text, ok := label.Options[value]; ok && strings.TrimSpace(text) != "" {
			return text
		}
	}
	return value
}

// Column is advisory metadata describing the storage column behind a field.
type Column struct {
	DataType   string `json:"dataType" yaml:"dataType"`
	IsNullable bool   `json:"isNullable" yaml:"isNullable"`
}

// ColumnMetadata maps field names to column metadata.
type ColumnMetadata map[string]Column

// ParseLabels decodes label metadata from JSON, falling back to YAML.
func ParseLabels(data []byte) (LabelMetadata, error) {
	var out LabelMetadata
	if err := decodeDocument(data, &out); err != nil {
		return nil, fmt.Errorf("render: parse labels: %w", err)
	}
	return out, nil
}

// ParseColumns decodes column metadata from JSON, falling back to YAML.
func ParseColumns(data []byte) (ColumnMetadata, error) {
	var out ColumnMetadata
	if err := decodeDocument(data, &out); err != nil {
		return nil, fmt.Errorf("render: parse columns: %w", err)
	}
	return out, nil
}

// LoadLabels reads label metadata from a file.
func LoadLabels(path string) (LabelMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read labels %q: %w", path, err)
	}
	return ParseLabels(data)
}

// LoadColumns reads column metadata from a file.
func LoadColumns(path string) (ColumnMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read columns %q: %w", path, err)
	}
	return ParseColumns(data)
}

func decodeDocument(data []byte, dest any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	jsonErr := json.Unmarshal(data, dest)
	if jsonErr == nil {
		return nil
	}
	if yamlErr := yaml.Unmarshal(data, dest); yamlErr != nil {
		return fmt.Errorf("json: %v; yaml: %w", jsonErr, yamlErr)
	}
	return nil
}
