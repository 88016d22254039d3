package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-recordform/pkg/openapi"
	"github.com/goliatone/go-recordform/pkg/orchestrator"
	"github.com/goliatone/go-recordform/pkg/recordsource/sqlite"
	"github.com/goliatone/go-recordform/pkg/render"
	"github.com/goliatone/go-recordform/pkg/renderers/tui"
	"github.com/goliatone/go-recordform/pkg/renderers/vanilla"
)

// session holds what one command invocation needs: the resolved pipeline
// request and, when configured, the record store.
type session struct {
	gen   *orchestrator.Orchestrator
	req   orchestrator.Request
	store *sqlite.Store
	table string
	key   string
	id    string
}

func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// hasRecord reports whether submissions can be written back to a row.
func (s *session) hasRecord() bool {
	return s.store != nil && s.table != "" && s.id != ""
}

func (a *app) openSession(ctx context.Context, vanillaOptions ...vanilla.Option) (*session, error) {
	s := &session{
		table: strings.TrimSpace(a.v.GetString(keySQLiteTable)),
		key:   strings.TrimSpace(a.v.GetString(keySQLiteKey)),
		id:    strings.TrimSpace(a.v.GetString(keySQLiteID)),
	}

	if dsn := strings.TrimSpace(a.v.GetString(keySQLiteDSN)); dsn != "" {
		store, err := sqlite.Open(ctx, dsn, sqlite.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	gen, err := a.orchestrator(s.store, vanillaOptions...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.gen = gen

	req, err := a.request(ctx, s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.req = req
	return s, nil
}

func (a *app) orchestrator(store *sqlite.Store, vanillaOptions ...vanilla.Option) (*orchestrator.Orchestrator, error) {
	html, err := vanilla.New(vanillaOptions...)
	if err != nil {
		return nil, err
	}
	summary, err := tui.New()
	if err != nil {
		return nil, err
	}
	registry, err := render.NewRegistry(html, summary)
	if err != nil {
		return nil, err
	}

	timeout := a.v.GetDuration(keyOpenAPITimeout)
	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(a.v.GetString(keyRenderer)),
		orchestrator.WithAdapter(orchestrator.NewOpenAPIAdapter(
			openapi.NewLoader(openapi.WithHTTPFallback(timeout)),
			openapi.NewParser(),
		)),
	}
	if store != nil {
		options = append(options, orchestrator.WithAdapter(orchestrator.NewTableAdapter(store)))
	}
	return orchestrator.New(options...), nil
}

func (a *app) request(ctx context.Context, s *session) (orchestrator.Request, error) {
	req := orchestrator.Request{
		Renderer: a.v.GetString(keyRenderer),
		RenderOptions: render.RenderOptions{
			Title: a.v.GetString(keyTitle),
		},
	}

	switch {
	case a.v.GetString(keySchema) != "":
		req.Adapter = orchestrator.AdapterDocument
		req.Ref = orchestrator.Ref{Location: a.v.GetString(keySchema)}
	case a.v.GetString(keyOpenAPISource) != "":
		req.Adapter = orchestrator.AdapterOpenAPI
		req.Ref = orchestrator.Ref{
			Location: a.v.GetString(keyOpenAPISource),
			Selector: a.v.GetString(keyOpenAPISelect),
		}
	case s.store != nil && s.table != "":
		req.Adapter = orchestrator.AdapterSQLite
		req.Ref = orchestrator.Ref{Location: s.table}
	default:
		return req, errors.New("one of --schema, --openapi or --sqlite-table is required")
	}

	if path := a.v.GetString(keyLabels); path != "" {
		labels, err := render.LoadLabels(path)
		if err != nil {
			return req, err
		}
		req.RenderOptions.Labels = labels
	}

	columns := render.ColumnMetadata{}
	if s.store != nil && s.table != "" {
		fromTable, err := s.store.Columns(ctx, s.table)
		if err != nil {
			return req, err
		}
		for name, column := range fromTable {
			columns[name] = column
		}
	}
	if path := a.v.GetString(keyColumns); path != "" {
		fromFile, err := render.LoadColumns(path)
		if err != nil {
			return req, err
		}
		for name, column := range fromFile {
			columns[name] = column
		}
	}
	if len(columns) > 0 {
		req.RenderOptions.Columns = columns
	}

	switch {
	case s.hasRecord():
		row, err := s.store.Row(ctx, s.table, s.key, s.id)
		if err != nil {
			return req, err
		}
		req.Values = row
	case a.v.GetString(keyValues) != "":
		values, err := loadValues(a.v.GetString(keyValues))
		if err != nil {
			return req, err
		}
		req.Values = values
	}
	return req, nil
}

// loadValues decodes a JSON object, falling back to YAML.
func loadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values %q: %w", path, err)
	}
	return decodeValues(data, path)
}

func decodeValues(data []byte, source string) (map[string]any, error) {
	var values map[string]any
	if jsonErr := json.Unmarshal(data, &values); jsonErr == nil {
		return values, nil
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode values %q: %w", source, err)
	}
	if values == nil {
		return nil, fmt.Errorf("decode values %q: expected an object", source)
	}
	return values, nil
}
