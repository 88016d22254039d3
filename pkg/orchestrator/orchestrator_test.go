package orchestrator_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordform/pkg/orchestrator"
	"github.com/goliatone/go-recordform/pkg/render"
	"github.com/goliatone/go-recordform/pkg/schema"
	"github.com/goliatone/go-recordform/pkg/testsupport"
)

type stubRenderer struct{}

func (stubRenderer) Name() string        { return "stub" }
func (stubRenderer) ContentType() string { return "text/plain" }
func (stubRenderer) Render(_ context.Context, view render.FormView, _ render.RenderOptions) ([]byte, error) {
	names := make([]string, 0, len(view.Fields))
	for _, field := range view.Fields {
		names = append(names, field.Name+"="+field.Value)
	}
	return []byte(strings.Join(names, ";")), nil
}

func TestGenerate_DocumentAdapterDefaults(t *testing.T) {
	gen := orchestrator.New()

	out, err := gen.Generate(testsupport.Context(), orchestrator.Request{
		Ref:    orchestrator.Ref{Location: filepath.Join("testdata", "profile.yaml")},
		Values: map[string]any{"display_name": "Ada", "role": "editor"},
		RenderOptions: render.RenderOptions{
			Title: "Profile",
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, want := range []string{"<form", `value="Ada"`, `value="0"`, "Profile", `<option value="editor" selected>`} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected output to contain %q\n%s", want, html)
		}
	}
}

func TestForm_OpenAPIAdapter(t *testing.T) {
	gen := orchestrator.New()

	f, err := gen.Form(testsupport.Context(), orchestrator.Request{
		Adapter: orchestrator.AdapterOpenAPI,
		Ref:     orchestrator.Ref{Location: filepath.Join("testdata", "api.yaml"), Selector: "createProfile"},
		Values:  map[string]any{"tags": "{a,b}"},
	})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if diff := cmp.Diff([]string{"display_name", "tags"}, f.Schema().Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	got, _ := f.Value("tags")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	component, err := gen.Schema(testsupport.Context(), orchestrator.Request{
		Adapter: orchestrator.AdapterOpenAPI,
		Ref:     orchestrator.Ref{Location: filepath.Join("testdata", "api.yaml"), Selector: "#/components/schemas/Profile"},
	})
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if component.Len() != 2 {
		t.Fatalf("expected 2 component fields, got %d", component.Len())
	}

	_, err = gen.Schema(testsupport.Context(), orchestrator.Request{
		Adapter: orchestrator.AdapterOpenAPI,
		Ref:     orchestrator.Ref{Location: filepath.Join("testdata", "api.yaml")},
	})
	if err == nil || !strings.Contains(err.Error(), "createProfile") {
		t.Fatalf("expected missing selector error listing operations, got %v", err)
	}
}

func TestGenerate_CustomRegistryAndAdapter(t *testing.T) {
	registry, err := render.NewRegistry(stubRenderer{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	files := fstest.MapFS{"schemas/profile.yaml": {Data: testsupport.MustReadGolden(t, filepath.Join("testdata", "profile.yaml"))}}

	gen := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer("stub"),
		orchestrator.WithAdapter(orchestrator.NewDocumentAdapter(files)),
	)

	out, err := gen.Generate(testsupport.Context(), orchestrator.Request{
		Ref:    orchestrator.Ref{Location: "schemas/profile.yaml"},
		Values: map[string]any{"display_name": "Grace"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := "display_name=Grace;max_sessions=0;mfa_enabled=false;role=viewer"
	if string(out) != want {
		t.Fatalf("unexpected output %q, want %q", out, want)
	}

	_, err = gen.Generate(testsupport.Context(), orchestrator.Request{
		Schema:   schema.MustNew(schema.Field{Name: "x", Type: schema.Text()}),
		Renderer: "missing",
	})
	if err == nil || !strings.Contains(err.Error(), `renderer "missing" not registered`) {
		t.Fatalf("expected missing renderer error, got %v", err)
	}
}

func TestSchema_Errors(t *testing.T) {
	gen := orchestrator.New()

	_, err := gen.Schema(testsupport.Context(), orchestrator.Request{Adapter: "nope"})
	if err == nil || !strings.Contains(err.Error(), `adapter "nope" not found`) {
		t.Fatalf("expected unknown adapter error, got %v", err)
	}

	_, err = gen.Schema(testsupport.Context(), orchestrator.Request{Adapter: orchestrator.AdapterSQLite})
	if err == nil {
		t.Fatalf("expected sqlite adapter to be absent by default")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.Schema(ctx, orchestrator.Request{Ref: orchestrator.Ref{Location: "testdata/profile.yaml"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}

	if diff := cmp.Diff([]string{"document", "openapi"}, gen.Adapters().List()); diff != "" {
		t.Fatalf("adapters mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_NilValuesKeepDefaults(t *testing.T) {
	gen := orchestrator.New()

	f, err := gen.Form(testsupport.Context(), orchestrator.Request{
		Ref: orchestrator.Ref{Location: filepath.Join("testdata", "profile.yaml")},
	})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if got, _ := f.Value("max_sessions"); got != int64(5) {
		t.Fatalf("expected declared default 5, got %#v", got)
	}
}

func TestRender_PreparedForm(t *testing.T) {
	registry, err := render.NewRegistry(stubRenderer{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	gen := orchestrator.New(orchestrator.WithRegistry(registry), orchestrator.WithDefaultRenderer("stub"))

	s := testsupport.MustLoadSchema(t, filepath.Join("testdata", "profile.yaml"))
	f := testsupport.MustNewForm(t, s, map[string]any{"display_name": "Ada", "max_sessions": 9})

	out, contentType, err := gen.Render(testsupport.Context(), f, "", render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if contentType != "text/plain" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	want := "display_name=Ada;max_sessions=9;mfa_enabled=false;role=viewer"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}
