// Package recordform is the convenience entry point for the record form
// engine. Most callers only need GenerateHTML; the packages under pkg/ expose
// each stage (schema, form state, rendering, sources) on its own.
package recordform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-recordform/pkg/orchestrator"
	"github.com/goliatone/go-recordform/pkg/render"
	"github.com/goliatone/go-recordform/pkg/renderers/vanilla"
)

// RenderOptions aliases render.RenderOptions for callers passing labels,
// column metadata or server errors.
type RenderOptions = render.RenderOptions

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the vanilla stylesheet.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(recordform.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders the schema document at path, prefilled with values,
// using the vanilla renderer.
func GenerateHTML(ctx context.Context, path string, values map[string]any, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Adapter:       orchestrator.AdapterDocument,
		Ref:           orchestrator.Ref{Location: path},
		Values:        values,
		Renderer:      vanilla.Name,
		RenderOptions: opts,
	})
}

// GenerateHTMLFromOpenAPI renders the request body of an OpenAPI operation.
// location is a file path or http(s) URL; selector is an operation id or
// "#/components/schemas/<name>".
func GenerateHTMLFromOpenAPI(ctx context.Context, location, selector string, values map[string]any, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Adapter:  orchestrator.AdapterOpenAPI,
		Ref:      orchestrator.Ref{Location: location, Selector: selector},
		Values:   values,
		Renderer: vanilla.Name,
	})
}
