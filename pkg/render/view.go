package render

import (
	"errors"
	"strconv"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/schema"
)

// Control names the input primitive used for a field.
type Control string

const (
	ControlText   Control = "text"
	ControlNumber Control = "number"
	ControlToggle Control = "toggle"
	ControlSelect Control = "select"
	ControlList   Control = "list"
	// ControlNone renders an empty placeholder for types outside the
	// editable set.
	ControlNone Control = "none"
)

// ControlFor chooses the control for a base type.
func ControlFor(base schema.Type) Control {
	switch base.Kind {
	case schema.KindText:
		return ControlText
	case schema.KindInteger:
		return ControlNumber
	case schema.KindBoolean:
		return ControlToggle
	case schema.KindEnum:
		return ControlSelect
	case schema.KindList:
		return ControlList
	default:
		return ControlNone
	}
}

// Choice is one selectable enum option.
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// FieldView is the render-ready state of one field.
type FieldView struct {
	Name        string      `json:"name"`
	ID          string      `json:"id"`
	Kind        schema.Kind `json:"kind"`
	Control     Control     `json:"control"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	// TypeHint is advisory text from column metadata.
	TypeHint string `json:"typeHint,omitempty"`
	// Value is the editable text of the field.
	Value   string   `json:"value"`
	Checked bool     `json:"checked,omitempty"`
	Options []Choice `json:"options,omitempty"`

	Required bool `json:"required,omitempty"`
	Nullable bool `json:"nullable,omitempty"`
	// NullHint is set for list fields whose column accepts null, where an
	// empty input submits null.
	NullHint bool     `json:"nullHint,omitempty"`
	Dirty    bool     `json:"dirty,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// FormView is the render-ready state of a form.
type FormView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title,omitempty"`
	Action      string        `json:"action,omitempty"`
	Method      string        `json:"method,omitempty"`
	SubmitLabel string        `json:"submitLabel,omitempty"`
	Fields      []FieldView   `json:"fields"`
	Errors      []string      `json:"errors,omitempty"`
	Hidden      []HiddenField `json:"hidden,omitempty"`
	Dirty       bool          `json:"dirty,omitempty"`
}

// Field returns the view of a named field.
func (v FormView) Field(name string) (FieldView, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldView{}, false
}

// BuildView resolves the render state of every field in schema order.
func BuildView(f *form.Form, opts RenderOptions) (FormView, error) {
	if f == nil {
		return FormView{}, errors.New("render: form is required")
	}
	s := f.Schema()

	view := FormView{
		ID:          f.ID(),
		Title:       opts.Title,
		Action:      opts.Action,
		Method:      opts.Method,
		SubmitLabel: opts.SubmitLabel,
		Errors:      normalizeMessages(opts.FormErrors),
		Hidden:      SortedHiddenFields(opts.Hidden),
		Dirty:       f.Dirty(),
		Fields:      make([]FieldView, 0, s.Len()),
	}
	if view.Method == "" {
		view.Method = "post"
	}
	if view.SubmitLabel == "" {
		view.SubmitLabel = "Save"
	}

	for _, field := range s.Fields() {
		desc, ok := s.Descriptor(field.Name)
		if !ok {
			return FormView{}, &schema.SchemaError{Field: field.Name, Message: "missing descriptor"}
		}
		view.Fields = append(view.Fields, buildField(f, field, desc, opts))
	}
	return view, nil
}

func buildField(f *form.Form, field schema.Field, desc schema.Descriptor, opts RenderOptions) FieldView {
	value, _ := f.Value(field.Name)
	column := opts.Columns[field.Name]

	fv := FieldView{
		Name:        field.Name,
		ID:          f.ID() + "-" + field.Name,
		Kind:        desc.Base.Kind,
		Control:     ControlFor(desc.Base),
		Label:       resolveLabel(field.Name, opts),
		Description: field.Description,
		TypeHint:    column.DataType,
		Required:    !desc.Optional,
		Nullable:    desc.Nullable,
		Dirty:       f.IsDirty(field.Name),
	}

	switch fv.Control {
	case ControlText:
		fv.Value, _ = value.(string)
	case ControlNumber:
		if n, ok := value.(int64); ok {
			fv.Value = strconv.FormatInt(n, 10)
		}
	case ControlToggle:
		fv.Checked, _ = value.(bool)
		fv.Value = strconv.FormatBool(fv.Checked)
	case ControlSelect:
		fv.Value, _ = value.(string)
		fv.Options = make([]Choice, 0, len(desc.Base.Options))
		for _, option := range desc.Base.Options {
			fv.Options = append(fv.Options, Choice{
				Value:    option,
				Label:    opts.Labels.OptionLabel(field.Name, option),
				Selected: option == fv.Value,
			})
		}
	case ControlList:
		fv.Value = form.ListInputText(value)
		fv.NullHint = column.IsNullable || desc.Nullable
	}

	if raw, ok := f.Input(field.Name); ok && f.FieldError(field.Name) != nil {
		fv.Value = raw
	}
	if cerr := f.FieldError(field.Name); cerr != nil {
		fv.Errors = append(fv.Errors, cerr.Message)
	}
	fv.Errors = normalizeMessages(append(fv.Errors, opts.Errors[field.Name]...))
	return fv
}

func resolveLabel(name string, opts RenderOptions) string {
	if label, ok := opts.Labels.FieldLabel(name); ok {
		return label
	}
	if opts.Labeler != nil {
		if label := opts.Labeler(name); label != "" {
			return label
		}
	}
	return name
}
