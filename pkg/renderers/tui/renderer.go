package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/render"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

const defaultMaxAttempts = 3

// Renderer drives a form from the terminal. Prompt collects values through
// the prompt driver; Render prints a read-only text summary of a FormView.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	secrets           map[string]struct{}
	maxAttempts       int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		secrets:      make(map[string]struct{}),
		maxAttempts:  defaultMaxAttempts,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the content type of Render output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// OutputContentType reports the serialization format used by Collect.
func (r *Renderer) OutputContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prints every field with its current value and messages.
func (r *Renderer) Render(_ context.Context, view render.FormView, _ render.RenderOptions) ([]byte, error) {
	var b strings.Builder
	if view.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", view.Title)
	}
	for _, message := range view.Errors {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, message)
	}
	for _, field := range view.Fields {
		if field.Control == render.ControlNone {
			continue
		}
		value := field.Value
		if _, secret := r.secrets[field.Name]; secret && value != "" {
			value = "********"
		}
		if field.Control == render.ControlList && value == "" {
			value = "null"
		}
		fmt.Fprintf(&b, "%s: %s", field.Label, value)
		if field.TypeHint != "" {
			fmt.Fprintf(&b, " (%s)", field.TypeHint)
		}
		b.WriteString("\n")
		for _, message := range field.Errors {
			fmt.Fprintf(&b, "  %s%s\n", r.theme.ErrorPrefix, message)
		}
	}
	return []byte(b.String()), nil
}

// Collect prompts for every field of f and serializes the validated values
// in the configured output format.
func (r *Renderer) Collect(ctx context.Context, f *form.Form, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Prompt(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	return r.Serialize(values)
}

// Prompt walks every field of f in schema order, applying answers as user
// edits. When the result fails validation the failing fields are asked again,
// up to the configured number of rounds.
func (r *Renderer) Prompt(ctx context.Context, f *form.Form, opts render.RenderOptions) (form.ValueSet, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if f == nil {
		return nil, errors.New("tui: form is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	view, err := render.BuildView(f, opts)
	if err != nil {
		return nil, err
	}
	for _, message := range view.Errors {
		r.info(ctx, r.theme.ErrorPrefix+message)
	}
	for _, field := range view.Fields {
		if err := r.promptField(ctx, f, field); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		values, err := f.Validate()
		if err == nil {
			if r.submitTransformer != nil {
				values, err = r.submitTransformer(values)
				if err != nil {
					return nil, fmt.Errorf("tui: submit transformer: %w", err)
				}
			}
			return values, nil
		}

		verr, ok := form.AsValidationError(err)
		if !ok {
			return nil, err
		}
		if stuck := unanswerable(view, verr); len(stuck) > 0 {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnanswerable, strings.Join(stuck, ", "), verr)
		}
		if attempt >= r.maxAttempts {
			return nil, fmt.Errorf("%w: %v", ErrTooManyAttempts, verr)
		}

		failing := make(map[string]struct{}, len(verr.Issues))
		for _, issue := range verr.Issues {
			r.info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, issue.Field, issue.Message))
			failing[issue.Field] = struct{}{}
		}

		view, err = render.BuildView(f, opts)
		if err != nil {
			return nil, err
		}
		for _, field := range view.Fields {
			if _, retry := failing[field.Name]; !retry {
				continue
			}
			if err := r.promptField(ctx, f, field); err != nil {
				return nil, err
			}
		}
	}
}

// unanswerable lists failing fields that have no prompt.
func unanswerable(view render.FormView, verr *form.ValidationError) []string {
	failing := verr.Fields()
	var names []string
	for _, field := range view.Fields {
		if _, bad := failing[field.Name]; bad && field.Control == render.ControlNone {
			names = append(names, field.Name)
		}
	}
	return names
}

func (r *Renderer) promptField(ctx context.Context, f *form.Form, field render.FieldView) error {
	switch field.Control {
	case render.ControlText:
		return r.promptText(ctx, f, field)
	case render.ControlNumber:
		return r.promptInput(ctx, f, field, "Whole number")
	case render.ControlToggle:
		return r.promptToggle(ctx, f, field)
	case render.ControlSelect:
		return r.promptSelect(ctx, f, field)
	case render.ControlList:
		help := `JSON array, for example ["a","b"]`
		if field.NullHint {
			help += "; leave empty for null"
		}
		return r.promptInput(ctx, f, field, help)
	default:
		return nil
	}
}

func (r *Renderer) promptText(ctx context.Context, f *form.Form, field render.FieldView) error {
	cfg := InputConfig{
		Message: promptMessage(field),
		Default: field.Value,
		Help:    field.Description,
	}

	var (
		response string
		err      error
	)
	if _, secret := r.secrets[field.Name]; secret {
		cfg.Default = ""
		response, err = r.driver.Password(ctx, cfg)
		if err == nil && response == "" {
			// An empty answer keeps the current secret.
			return nil
		}
	} else {
		response, err = r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	return f.SetInput(field.Name, response)
}

func (r *Renderer) promptInput(ctx context.Context, f *form.Form, field render.FieldView, help string) error {
	if field.Description != "" {
		help = field.Description + " (" + help + ")"
	}
	current := field.Value

	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: promptMessage(field),
			Default: current,
			Help:    help,
		})
		if err != nil {
			return err
		}

		err = f.SetInput(field.Name, response)
		var cerr *form.CoercionError
		if errors.As(err, &cerr) {
			r.info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, field.Name, cerr.Message))
			current = response
			continue
		}
		return err
	}
}

func (r *Renderer) promptToggle(ctx context.Context, f *form.Form, field render.FieldView) error {
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: promptMessage(field),
		Default: field.Checked,
		Help:    field.Description,
	})
	if err != nil {
		return err
	}
	return f.Set(field.Name, resp)
}

func (r *Renderer) promptSelect(ctx context.Context, f *form.Form, field render.FieldView) error {
	if len(field.Options) == 0 {
		r.info(ctx, fmt.Sprintf("%s%s has no options", r.theme.InfoPrefix, field.Label))
		return nil
	}

	labels := make([]string, len(field.Options))
	values := make([]string, len(field.Options))
	for i, option := range field.Options {
		labels[i] = option.Label
		values[i] = option.Value
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      promptMessage(field),
			Options:      labels,
			DefaultIndex: indexOf(values, field.Value),
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			r.info(ctx, fmt.Sprintf("%sInvalid %s: choose one of the listed options", r.theme.ErrorPrefix, field.Name))
			continue
		}
		return f.SetInput(field.Name, values[idx])
	}
}

func (r *Renderer) info(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, msg)
}

func promptMessage(field render.FieldView) string {
	message := field.Label
	if field.TypeHint != "" {
		message += " (" + field.TypeHint + ")"
	}
	if field.Required && field.Control != render.ControlToggle {
		message += " *"
	}
	return message
}

// Serialize encodes values in the configured output format.
func (r *Renderer) Serialize(values form.ValueSet) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.MarshalIndent(values, "", "  ")
	}
}

func flattenForm(values form.ValueSet) string {
	flattened := url.Values{}
	for name, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				flattened.Add(name+"[]", item)
			}
		case nil:
			flattened.Set(name, "")
		default:
			flattened.Set(name, fmt.Sprint(v))
		}
	}
	return flattened.Encode()
}

func prettyPrint(values form.ValueSet) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		switch v := values[name].(type) {
		case []string:
			if len(v) == 0 {
				fmt.Fprintf(&b, "%s=[]\n", name)
			}
			for idx, item := range v {
				fmt.Fprintf(&b, "%s[%d]=%s\n", name, idx, item)
			}
		case nil:
			fmt.Fprintf(&b, "%s=null\n", name)
		default:
			fmt.Fprintf(&b, "%s=%v\n", name, v)
		}
	}
	return b.String()
}
