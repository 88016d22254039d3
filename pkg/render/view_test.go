package render_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/render"
	"github.com/goliatone/go-recordform/pkg/schema"
)

func authSchema() *schema.Schema {
	return schema.MustNew(
		schema.Field{Name: "site_url", Type: schema.Text(), Description: "Public URL of the site"},
		schema.Field{Name: "jwt_exp", Type: schema.Optional(schema.WithDefault(schema.Integer(), 3600))},
		schema.Field{Name: "disable_signup", Type: schema.Optional(schema.Boolean())},
		schema.Field{Name: "sms_provider", Type: schema.Nullable(schema.Enum("twilio", "vonage"))},
		schema.Field{Name: "uri_allow_list", Type: schema.Optional(schema.List(schema.Text()))},
		schema.Field{Name: "updated_at", Type: schema.Optional(schema.Opaque("timestamp"))},
	)
}

func newForm(t *testing.T, values map[string]any) *form.Form {
	t.Helper()
	f, err := form.New(authSchema(), form.WithID("auth"))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	f.Reset(values)
	return f
}

func TestBuildViewDispatchesControls(t *testing.T) {
	f := newForm(t, map[string]any{
		"site_url":       "https://example.com",
		"jwt_exp":        "900",
		"disable_signup": 1,
		"sms_provider":   "vonage",
		"uri_allow_list": "{https://a.example,https://b.example}",
	})

	view, err := render.BuildView(f, render.RenderOptions{
		Labels: render.LabelMetadata{
			"site_url":     {Text: "Site URL"},
			"sms_provider": {Text: "SMS provider", Options: map[string]string{"twilio": "Twilio"}},
		},
		Columns: render.ColumnMetadata{
			"jwt_exp":        {DataType: "integer"},
			"uri_allow_list": {DataType: "ARRAY", IsNullable: true},
		},
	})
	if err != nil {
		t.Fatalf("build view: %v", err)
	}

	controls := make([]render.Control, 0, len(view.Fields))
	for _, field := range view.Fields {
		controls = append(controls, field.Control)
	}
	wantControls := []render.Control{
		render.ControlText, render.ControlNumber, render.ControlToggle,
		render.ControlSelect, render.ControlList, render.ControlNone,
	}
	if diff := cmp.Diff(wantControls, controls); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}

	site, _ := view.Field("site_url")
	if site.Label != "Site URL" || !site.Required || site.ID != "auth-site_url" || site.Description == "" {
		t.Fatalf("site_url view = %+v", site)
	}

	exp, _ := view.Field("jwt_exp")
	if exp.Value != "900" || exp.TypeHint != "integer" || exp.Required || exp.Label != "jwt_exp" {
		t.Fatalf("jwt_exp view = %+v", exp)
	}

	signup, _ := view.Field("disable_signup")
	if !signup.Checked {
		t.Fatalf("disable_signup should be checked")
	}

	provider, _ := view.Field("sms_provider")
	wantChoices := []render.Choice{
		{Value: "twilio", Label: "Twilio"},
		{Value: "vonage", Label: "vonage", Selected: true},
	}
	if diff := cmp.Diff(wantChoices, provider.Options); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}

	list, _ := view.Field("uri_allow_list")
	if list.Value != `["https://a.example","https://b.example"]` || !list.NullHint {
		t.Fatalf("uri_allow_list view = %+v", list)
	}
}

func TestBuildViewShowsPendingInput(t *testing.T) {
	f := newForm(t, nil)
	_ = f.SetInput("jwt_exp", "soon")
	_ = f.SetInput("uri_allow_list", `["a",`)

	view, err := render.BuildView(f, render.RenderOptions{
		Errors:     map[string][]string{"site_url": {"Required"}},
		FormErrors: []string{" upstream rejected ", ""},
		Hidden:     map[string]string{"_csrf": "tok"},
	})
	if err != nil {
		t.Fatalf("build view: %v", err)
	}

	exp, _ := view.Field("jwt_exp")
	if exp.Value != "soon" || len(exp.Errors) != 1 {
		t.Fatalf("jwt_exp view = %+v", exp)
	}
	list, _ := view.Field("uri_allow_list")
	if list.Value != `["a",` || list.Errors[0] != "Invalid JSON" {
		t.Fatalf("uri_allow_list view = %+v", list)
	}
	site, _ := view.Field("site_url")
	if diff := cmp.Diff([]string{"Required"}, site.Errors); diff != "" {
		t.Fatalf("site_url errors mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"upstream rejected"}, view.Errors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if len(view.Hidden) != 1 || !view.Dirty || view.Method != "post" {
		t.Fatalf("form view = %+v", view)
	}
}

func TestBuildViewFallsBackToLabeler(t *testing.T) {
	f := newForm(t, nil)
	view, err := render.BuildView(f, render.RenderOptions{
		Labeler: func(name string) string { return strings.ToUpper(name) },
	})
	if err != nil {
		t.Fatalf("build view: %v", err)
	}
	field, _ := view.Field("jwt_exp")
	if field.Label != "JWT_EXP" {
		t.Fatalf("label = %q", field.Label)
	}
}

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(_ context.Context, view render.FormView, _ render.RenderOptions) ([]byte, error) {
	return []byte(view.ID), nil
}

func TestRegistry(t *testing.T) {
	registry, err := render.NewRegistry(stubRenderer{name: "b"}, stubRenderer{name: "a"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := registry.Register(stubRenderer{name: "a"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if diff := cmp.Diff([]string{"a", "b"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	out, contentType, err := registry.Render(context.Background(), "a", render.FormView{ID: "x"}, render.RenderOptions{})
	if err != nil || string(out) != "x" || contentType != "text/plain" {
		t.Fatalf("render = %q %q %v", out, contentType, err)
	}
	if _, _, err := registry.Render(context.Background(), "missing", render.FormView{}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}
