package httpform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/render"
	"github.com/goliatone/go-recordform/pkg/schema"
)

// maxFormBytes caps the urlencoded body the handler parses.
const maxFormBytes = 1 << 20

// LoadFunc returns the record the form starts from. A nil map starts from
// schema defaults.
type LoadFunc func(ctx context.Context, r *http.Request) (map[string]any, error)

// HiddenFunc contributes hidden inputs per request, such as CSRF tokens.
type HiddenFunc func(r *http.Request) []render.HiddenField

// Option configures a Handler.
type Option func(*Handler)

// WithRenderer selects the registry entry used for HTML output.
func WithRenderer(name string) Option {
	return func(h *Handler) {
		if strings.TrimSpace(name) != "" {
			h.renderer = name
		}
	}
}

// WithRenderOptions sets the base render options (labels, columns, title).
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(h *Handler) {
		h.options = opts
	}
}

// WithLoader sets the record loader used on every request.
func WithLoader(load LoadFunc) Option {
	return func(h *Handler) {
		h.load = load
	}
}

// WithHidden adds per-request hidden inputs.
func WithHidden(fn HiddenFunc) Option {
	return func(h *Handler) {
		h.hidden = fn
	}
}

// WithLogger routes request logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithFormOptions forwards options to every form.New call.
func WithFormOptions(options ...form.Option) Option {
	return func(h *Handler) {
		h.formOptions = append(h.formOptions, options...)
	}
}

// Handler is an http.Handler for one schema.
type Handler struct {
	schema      *schema.Schema
	registry    *render.Registry
	renderer    string
	options     render.RenderOptions
	load        LoadFunc
	submit      form.SubmitFunc
	hidden      HiddenFunc
	logger      *slog.Logger
	formOptions []form.Option
}

var _ http.Handler = (*Handler)(nil)

// New builds a Handler. The registry must contain the selected renderer,
// "vanilla" unless WithRenderer says otherwise.
func New(s *schema.Schema, registry *render.Registry, submit form.SubmitFunc, options ...Option) (*Handler, error) {
	if s == nil {
		return nil, &schema.SchemaError{Message: "schema is required"}
	}
	if registry == nil {
		return nil, errors.New("httpform: renderer registry is required")
	}
	if submit == nil {
		return nil, errors.New("httpform: submit handler is required")
	}
	h := &Handler{
		schema:   s,
		registry: registry,
		renderer: "vanilla",
		submit:   submit,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if !registry.Has(h.renderer) {
		return nil, fmt.Errorf("httpform: renderer %q not registered", h.renderer)
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.serveForm(w, r)
	case http.MethodPost:
		h.serveSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) serveForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.newForm(r, "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, f, http.StatusOK, nil, nil)
}

func (h *Handler) serveSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "httpform: malformed form body", http.StatusBadRequest)
		return
	}

	f, err := h.newForm(r, r.PostForm.Get(render.FormIDInput))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.apply(f, r)

	var submitted form.ValueSet
	err = f.Submit(r.Context(), func(ctx context.Context, values form.ValueSet) error {
		submitted = values
		return h.submit(ctx, values)
	})

	var (
		verr     *form.ValidationError
		rejected FieldErrors
	)
	switch {
	case err == nil:
		h.logger.Info("form submitted", "form", f.ID(), "fields", f.DirtyFields())
		writeJSON(w, http.StatusOK, map[string]any{"id": f.ID(), "values": submitted})
	case errors.As(err, &verr):
		h.logger.Debug("form rejected", "form", f.ID(), "issues", len(verr.Issues))
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"id": f.ID(), "errors": verr.Fields()})
			return
		}
		h.render(w, r, f, http.StatusUnprocessableEntity, render.ValidationMessages(err), nil)
	case errors.As(err, &rejected):
		mapping := render.MapErrorPayload(h.schema, rejected)
		h.logger.Debug("submission rejected", "form", f.ID(), "fields", len(mapping.Fields))
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"id": f.ID(), "errors": mapping.Fields, "formErrors": mapping.Form})
			return
		}
		h.render(w, r, f, http.StatusUnprocessableEntity, mapping.Fields, mapping.Form)
	case errors.Is(err, form.ErrSubmitting):
		http.Error(w, "httpform: submission in progress", http.StatusConflict)
	default:
		h.logger.Error("submit failed", "form", f.ID(), "error", err)
		if wantsJSON(r) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"id": f.ID(), "formErrors": []string{"Submission failed"}})
			return
		}
		h.render(w, r, f, http.StatusInternalServerError, nil, []string{"Submission failed"})
	}
}

func (h *Handler) newForm(r *http.Request, id string) (*form.Form, error) {
	options := append([]form.Option(nil), h.formOptions...)
	if id = strings.TrimSpace(id); id != "" {
		options = append(options, form.WithID(id))
	}
	f, err := form.New(h.schema, options...)
	if err != nil {
		return nil, err
	}
	if h.load != nil {
		raw, err := h.load(r.Context(), r)
		if err != nil {
			return nil, fmt.Errorf("httpform: load record: %w", err)
		}
		if raw != nil {
			f.Reset(raw)
		}
	}
	return f, nil
}

// apply copies posted inputs onto the form. Absent toggles are false; other
// absent fields keep their loaded value. Opaque fields have no control and
// are never read from the request.
func (h *Handler) apply(f *form.Form, r *http.Request) {
	for _, field := range h.schema.Fields() {
		if _, hidden := h.options.Hidden[field.Name]; hidden {
			continue
		}
		desc, _ := h.schema.Descriptor(field.Name)
		control := render.ControlFor(desc.Base)

		switch control {
		case render.ControlNone:
			continue
		case render.ControlToggle:
			raw := "false"
			if values, ok := r.PostForm[field.Name]; ok && len(values) > 0 {
				raw = values[len(values)-1]
			}
			_ = f.SetInput(field.Name, raw)
		default:
			values, ok := r.PostForm[field.Name]
			if !ok || len(values) == 0 {
				continue
			}
			// Coercion errors stay on the form and surface through Validate.
			_ = f.SetInput(field.Name, values[0])
		}
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, f *form.Form, status int, fieldErrors map[string][]string, formErrors []string) {
	opts := h.options
	opts.Errors = mergeErrors(h.options.Errors, fieldErrors)
	opts.FormErrors = render.MergeFormErrors(h.options.FormErrors, formErrors...)

	extra := []render.HiddenField{render.FormID(f.ID())}
	if h.hidden != nil {
		extra = append(extra, h.hidden(r)...)
	}
	opts.Hidden = render.MergeHiddenFields(h.options.Hidden, extra...)

	view, err := render.BuildView(f, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, contentType, err := h.registry.Render(r.Context(), h.renderer, view, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("form request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func mergeErrors(base, extra map[string][]string) map[string][]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string][]string, len(base)+len(extra))
	for key, messages := range base {
		out[key] = append([]string(nil), messages...)
	}
	for key, messages := range extra {
		out[key] = append(out[key], messages...)
	}
	return out
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
