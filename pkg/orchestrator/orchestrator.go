package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/render"
	"github.com/goliatone/go-recordform/pkg/renderers/vanilla"
	"github.com/goliatone/go-recordform/pkg/schema"
)

const defaultRendererName = vanilla.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithAdapter registers a schema adapter, replacing a built-in adapter of the
// same name.
func WithAdapter(adapter SchemaAdapter) Option {
	return func(o *Orchestrator) {
		o.extraAdapters = append(o.extraAdapters, adapter)
	}
}

// WithLogger routes pipeline logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates schema resolution, form state and rendering.
type Orchestrator struct {
	adapters        *AdapterRegistry
	extraAdapters   []SchemaAdapter
	registry        *render.Registry
	defaultRenderer string
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator. Without options it resolves schema
// documents and OpenAPI sources and renders with the vanilla renderer.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		adapters:        NewAdapterRegistry(),
		defaultRenderer: defaultRendererName,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one pass through the pipeline.
type Request struct {
	// Schema bypasses adapter resolution when set.
	Schema *schema.Schema

	// Adapter names the schema adapter. Defaults to "document".
	Adapter string
	Ref     Ref

	// Values is the record the form starts from. Nil starts from defaults.
	Values map[string]any

	// Renderer names the renderer to use. If empty, the configured default
	// renderer is used.
	Renderer string

	RenderOptions render.RenderOptions
	FormOptions   []form.Option
}

// Adapters exposes the adapter registry.
func (o *Orchestrator) Adapters() *AdapterRegistry { return o.adapters }

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry { return o.registry }

// Schema resolves the request's schema.
func (o *Orchestrator) Schema(ctx context.Context, req Request) (*schema.Schema, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if req.Schema != nil {
		return req.Schema, nil
	}

	name := req.Adapter
	if name == "" {
		name = AdapterDocument
	}
	adapter, err := o.adapters.Get(name)
	if err != nil {
		return nil, err
	}
	s, err := adapter.Resolve(ctx, req.Ref)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: resolve schema via %s: %w", adapter.Name(), err)
	}
	o.logger.Debug("schema resolved", "adapter", adapter.Name(), "location", req.Ref.Location, "fields", s.Len())
	return s, nil
}

// Form resolves the schema and returns a form reset to req.Values. A nil
// Values keeps the schema defaults.
func (o *Orchestrator) Form(ctx context.Context, req Request) (*form.Form, error) {
	s, err := o.Schema(ctx, req)
	if err != nil {
		return nil, err
	}
	options := append([]form.Option{form.WithLogger(o.logger)}, req.FormOptions...)
	f, err := form.New(s, options...)
	if err != nil {
		return nil, err
	}
	if req.Values != nil {
		f.Reset(req.Values)
	}
	return f, nil
}

// Render builds the view of f and renders it with the named renderer. It
// returns the output and its content type.
func (o *Orchestrator) Render(ctx context.Context, f *form.Form, rendererName string, opts render.RenderOptions) ([]byte, string, error) {
	name, err := o.rendererFor(rendererName)
	if err != nil {
		return nil, "", err
	}
	view, err := render.BuildView(f, opts)
	if err != nil {
		return nil, "", err
	}
	out, contentType, err := o.registry.Render(ctx, name, view, opts)
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: render output: %w", err)
	}
	return out, contentType, nil
}

// Generate runs schema resolution, form construction and rendering, and
// returns the rendered bytes (HTML for the default vanilla renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	f, err := o.Form(ctx, req)
	if err != nil {
		return nil, err
	}
	out, _, err := o.Render(ctx, f, req.Renderer, req.RenderOptions)
	return out, err
}

func (o *Orchestrator) rendererFor(name string) (string, error) {
	if o.registry == nil {
		return "", errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		if o.registry.Has(target) {
			return target, nil
		}
		if name != "" {
			return "", fmt.Errorf("orchestrator: renderer %q not registered", name)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return "", errors.New("orchestrator: no renderers registered")
	}
	return names[0], nil
}

func (o *Orchestrator) applyDefaults() {
	_ = o.adapters.Register(NewDocumentAdapter(nil))
	_ = o.adapters.Register(NewOpenAPIAdapter(nil, nil))
	for _, adapter := range o.extraAdapters {
		if adapter == nil {
			continue
		}
		if err := o.adapters.Replace(adapter); err != nil {
			o.initialiseErr = err
		}
	}

	if o.registry == nil {
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		registry, err := render.NewRegistry(renderer)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default registry: %w", err)
			return
		}
		o.registry = registry
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
