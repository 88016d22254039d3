package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-recordform/pkg/render"
	rendertemplate "github.com/goliatone/go-recordform/pkg/render/template"
	"github.com/goliatone/go-recordform/pkg/render/template/pongo"
)

// Name is the registry name of the HTML renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheets      []string
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet links an external stylesheet from the rendered form.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(href); trimmed != "" {
			cfg.stylesheets = append(cfg.stylesheets, trimmed)
		}
	}
}

// WithDefaultStyles inlines the embedded stylesheet.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// Renderer renders a FormView as an HTML form fragment.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	stylesheets  []string
	inlineStyles string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	r := &Renderer{
		templates:   templates,
		stylesheets: cfg.stylesheets,
	}
	if cfg.inlineStyles {
		r.inlineStyles = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes templates/form.tmpl for view. Descriptions are sanitized
// before they reach the template; every other value is escaped by the
// template engine.
func (r *Renderer) Render(_ context.Context, view render.FormView, _ render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	method, override := formMethod(view.Method)
	hidden := view.Hidden
	if override != "" {
		hidden = render.SortedHiddenFields(render.MergeHiddenFields(hiddenMap(hidden), render.Hidden("_method", override)))
	}

	fields := make([]fieldContext, 0, len(view.Fields))
	for _, field := range view.Fields {
		fields = append(fields, newFieldContext(field))
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form": formContext{
			ID:          componentControlID(view.ID),
			Method:      method,
			Action:      view.Action,
			Title:       view.Title,
			SubmitLabel: view.SubmitLabel,
			Errors:      view.Errors,
			Hidden:      hidden,
		},
		"fields":        fields,
		"stylesheets":   r.stylesheets,
		"inline_styles": r.inlineStyles,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type formContext struct {
	ID          string               `json:"id"`
	Method      string               `json:"method"`
	Action      string               `json:"action,omitempty"`
	Title       string               `json:"title,omitempty"`
	SubmitLabel string               `json:"submit_label"`
	Errors      []string             `json:"errors,omitempty"`
	Hidden      []render.HiddenField `json:"hidden,omitempty"`
}

type fieldContext struct {
	Name            string          `json:"name"`
	Control         render.Control  `json:"control"`
	ControlID       string          `json:"control_id"`
	LabelID         string          `json:"label_id"`
	HintID          string          `json:"hint_id"`
	ErrorID         string          `json:"error_id"`
	DescribedBy     string          `json:"described_by,omitempty"`
	Label           string          `json:"label"`
	DescriptionHTML string          `json:"description_html,omitempty"`
	TypeHint        string          `json:"type_hint,omitempty"`
	Value           string          `json:"value"`
	Checked         bool            `json:"checked,omitempty"`
	Options         []render.Choice `json:"options,omitempty"`
	Required        bool            `json:"required,omitempty"`
	NullHint        bool            `json:"null_hint,omitempty"`
	Invalid         bool            `json:"invalid,omitempty"`
	Errors          []string        `json:"errors,omitempty"`
}

func newFieldContext(field render.FieldView) fieldContext {
	ctx := fieldContext{
		Name:            field.Name,
		Control:         field.Control,
		ControlID:       componentControlID(field.ID),
		LabelID:         componentLabelID(field.ID),
		HintID:          componentHintID(field.ID),
		ErrorID:         componentErrorID(field.ID),
		Label:           field.Label,
		DescriptionHTML: sanitizeDescription(field.Description),
		TypeHint:        field.TypeHint,
		Value:           field.Value,
		Checked:         field.Checked,
		Options:         field.Options,
		Required:        field.Required && field.Control != render.ControlToggle,
		NullHint:        field.NullHint,
		Invalid:         len(field.Errors) > 0,
		Errors:          field.Errors,
	}

	var describedBy []string
	if ctx.DescriptionHTML != "" {
		describedBy = append(describedBy, ctx.HintID)
	}
	if ctx.Invalid {
		describedBy = append(describedBy, ctx.ErrorID)
	}
	ctx.DescribedBy = strings.Join(describedBy, " ")
	return ctx
}

func hiddenMap(fields []render.HiddenField) map[string]string {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		out[field.Name] = field.Value
	}
	return out
}
