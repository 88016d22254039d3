package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-recordform/pkg/openapi"
	"github.com/goliatone/go-recordform/pkg/recordsource/sqlite"
	"github.com/goliatone/go-recordform/pkg/schema"
)

// Adapter names registered by default.
const (
	AdapterDocument = "document"
	AdapterOpenAPI  = "openapi"
	AdapterSQLite   = "sqlite"
)

// componentPrefix selects a components.schemas entry in an OpenAPI Ref.
const componentPrefix = "#/components/schemas/"

// Ref points an adapter at a schema. Location is a path, URL or table name;
// Selector narrows it further (an OpenAPI operation id or component).
type Ref struct {
	Location string
	Selector string
}

// SchemaAdapter resolves a Ref into a schema.
type SchemaAdapter interface {
	Name() string
	Resolve(ctx context.Context, ref Ref) (*schema.Schema, error)
}

// DocumentAdapter reads JSON or YAML schema documents.
type DocumentAdapter struct {
	fsys fs.FS
}

// NewDocumentAdapter reads from the OS filesystem, or from fsys when non-nil.
func NewDocumentAdapter(fsys fs.FS) *DocumentAdapter {
	return &DocumentAdapter{fsys: fsys}
}

func (a *DocumentAdapter) Name() string { return AdapterDocument }

func (a *DocumentAdapter) Resolve(ctx context.Context, ref Ref) (*schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ref.Location) == "" {
		return nil, errors.New("orchestrator: schema document path is required")
	}
	if a.fsys != nil {
		return schema.LoadFS(a.fsys, ref.Location)
	}
	return schema.LoadFile(ref.Location)
}

// OpenAPIAdapter derives schemas from OpenAPI documents. Selector is an
// operation id, or "#/components/schemas/<name>" for a component.
type OpenAPIAdapter struct {
	loader *openapi.Loader
	parser *openapi.Parser
}

// NewOpenAPIAdapter uses the given loader and parser, or defaults when nil.
func NewOpenAPIAdapter(loader *openapi.Loader, parser *openapi.Parser) *OpenAPIAdapter {
	if loader == nil {
		loader = openapi.NewLoader()
	}
	if parser == nil {
		parser = openapi.NewParser()
	}
	return &OpenAPIAdapter{loader: loader, parser: parser}
}

func (a *OpenAPIAdapter) Name() string { return AdapterOpenAPI }

func (a *OpenAPIAdapter) Resolve(ctx context.Context, ref Ref) (*schema.Schema, error) {
	src, err := openapi.ParseSource(ref.Location)
	if err != nil {
		return nil, err
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load document: %w", err)
	}
	spec, err := a.parser.Parse(ctx, doc)
	if err != nil {
		return nil, err
	}

	selector := strings.TrimSpace(ref.Selector)
	switch {
	case selector == "":
		ids := make([]string, 0)
		for _, op := range spec.Operations() {
			ids = append(ids, op.ID)
		}
		return nil, fmt.Errorf("orchestrator: openapi selector is required (operations: %s)", strings.Join(ids, ", "))
	case strings.HasPrefix(selector, componentPrefix):
		return spec.ComponentSchema(strings.TrimPrefix(selector, componentPrefix))
	default:
		return spec.RequestSchema(selector)
	}
}

// TableAdapter derives schemas from SQLite table declarations. Location is
// the table name.
type TableAdapter struct {
	store *sqlite.Store
}

// NewTableAdapter reads table metadata through store.
func NewTableAdapter(store *sqlite.Store) *TableAdapter {
	return &TableAdapter{store: store}
}

func (a *TableAdapter) Name() string { return AdapterSQLite }

func (a *TableAdapter) Resolve(ctx context.Context, ref Ref) (*schema.Schema, error) {
	if a.store == nil {
		return nil, errors.New("orchestrator: sqlite store is not configured")
	}
	return a.store.Schema(ctx, ref.Location)
}
