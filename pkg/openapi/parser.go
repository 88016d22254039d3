package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-recordform/pkg/schema"
)

var (
	// ErrOperationNotFound is returned when no operation carries the id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrComponentNotFound is returned when components.schemas lacks the name.
	ErrComponentNotFound = errors.New("openapi: component schema not found")
	// ErrNoRequestBody is returned for operations without a usable body schema.
	ErrNoRequestBody = errors.New("openapi: operation has no request body schema")
)

// requestMediaTypes lists body media types in lookup order.
var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// ParserOptions toggles document handling.
type ParserOptions struct {
	// ExternalRefs allows $ref pointers to other documents.
	ExternalRefs bool
	// Validate runs kin-openapi document validation after loading.
	Validate bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithExternalRefs toggles resolution of references to other documents.
func WithExternalRefs(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ExternalRefs = enabled
	}
}

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Validate = enabled
	}
}

// Parser turns Documents into Specs using kin-openapi.
type Parser struct {
	options ParserOptions
}

// NewParser constructs a Parser. Validation is on by default.
func NewParser(options ...ParserOption) *Parser {
	cfg := ParserOptions{Validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Parser{options: cfg}
}

// Parse loads the document and resolves its internal references.
func (p *Parser) Parse(ctx context.Context, doc Document) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ExternalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	return &Spec{doc: spec, location: doc.Location()}, nil
}

// Spec is a parsed OpenAPI document.
type Spec struct {
	doc      *openapi3.T
	location string
}

// Title returns info.title, or the document location when it is unset.
func (s *Spec) Title() string {
	if s.doc.Info != nil && s.doc.Info.Title != "" {
		return s.doc.Info.Title
	}
	return s.location
}

// Operations lists the operations that declare a request body schema, sorted
// by id. Operations without an operationId get "method:path".
func (s *Spec) Operations() []Operation {
	var out []Operation
	s.walkOperations(func(method, path string, op *openapi3.Operation) bool {
		mediaType, ref := requestBodySchema(op)
		if ref == nil {
			return true
		}
		out = append(out, Operation{
			ID:        operationID(method, path, op),
			Method:    method,
			Path:      path,
			Summary:   op.Summary,
			MediaType: mediaType,
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RequestSchema converts the request body of the operation into a schema.
func (s *Spec) RequestSchema(id string) (*schema.Schema, error) {
	var (
		found bool
		body  *openapi3.SchemaRef
	)
	s.walkOperations(func(method, path string, op *openapi3.Operation) bool {
		if operationID(method, path, op) != id {
			return true
		}
		found = true
		_, body = requestBodySchema(op)
		return false
	})
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, id)
	}
	return fromObject(body)
}

// ComponentNames lists components.schemas keys in sorted order.
func (s *Spec) ComponentNames() []string {
	if s.doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(s.doc.Components.Schemas))
	for name := range s.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComponentSchema converts a components.schemas entry into a schema.
func (s *Spec) ComponentSchema(name string) (*schema.Schema, error) {
	if s.doc.Components == nil {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref == nil {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}
	return fromObject(ref)
}

func (s *Spec) walkOperations(visit func(method, path string, op *openapi3.Operation) bool) {
	if s.doc.Paths == nil {
		return
	}
	paths := s.doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		methods := item.Operations()
		names := make([]string, 0, len(methods))
		for method := range methods {
			names = append(names, method)
		}
		sort.Strings(names)
		for _, method := range names {
			if !visit(strings.ToUpper(method), path, methods[method]) {
				return
			}
		}
	}
}

func operationID(method, path string, op *openapi3.Operation) string {
	if op != nil && op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func requestBodySchema(op *openapi3.Operation) (string, *openapi3.SchemaRef) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return "", nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mediaType, mt.Schema
		}
	}
	types := make([]string, 0, len(content))
	for mediaType := range content {
		types = append(types, mediaType)
	}
	sort.Strings(types)
	for _, mediaType := range types {
		if mt := content[mediaType]; mt != nil && mt.Schema != nil {
			return mediaType, mt.Schema
		}
	}
	return "", nil
}
