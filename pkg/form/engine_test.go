package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/schema"
)

func projectSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.Field{Name: "name", Type: schema.Text()},
		schema.Field{Name: "region", Type: schema.Enum("us-east-1", "eu-west-1")},
		schema.Field{Name: "plan", Type: schema.Optional(schema.WithDefault(schema.Enum("free", "pro"), "pro"))},
		schema.Field{Name: "seats", Type: schema.Integer()},
		schema.Field{Name: "paused", Type: schema.Boolean()},
		schema.Field{Name: "tags", Type: schema.Nullable(schema.List(schema.Text()))},
		schema.Field{Name: "kind", Type: schema.Enum()},
		schema.Field{Name: "created_at", Type: schema.Optional(schema.Opaque("timestamp"))},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func TestDefaultValues(t *testing.T) {
	got := form.DefaultValues(projectSchema(t))

	want := form.ValueSet{
		"name":       "",
		"region":     "us-east-1",
		"plan":       "pro",
		"seats":      int64(0),
		"paused":     false,
		"tags":       []string{},
		"kind":       "",
		"created_at": form.Undefined,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultValuesInvokesLazyDefault(t *testing.T) {
	calls := 0
	s := schema.MustNew(schema.Field{
		Name: "slug",
		Type: schema.WithDefaultFunc(schema.Text(), func() any {
			calls++
			return "generated"
		}),
	})

	got := form.DefaultValues(s)
	if got["slug"] != "generated" || calls != 1 {
		t.Fatalf("lazy default not applied: %v (calls=%d)", got["slug"], calls)
	}
}

func TestNormalizeInitialValues(t *testing.T) {
	s := projectSchema(t)

	tests := []struct {
		name  string
		raw   map[string]any
		field string
		want  any
	}{
		{name: "list brace literal", raw: map[string]any{"tags": "{a,b,c}"}, field: "tags", want: []string{"a", "b", "c"}},
		{name: "list brace literal trims", raw: map[string]any{"tags": "{ a , b }"}, field: "tags", want: []string{"a", "b"}},
		{name: "list quoted elements", raw: map[string]any{"tags": `{"x, y",z}`}, field: "tags", want: []string{"x, y", "z"}},
		{name: "list empty braces", raw: map[string]any{"tags": "{}"}, field: "tags", want: []string{}},
		{name: "list null", raw: map[string]any{"tags": nil}, field: "tags", want: []string{}},
		{name: "list malformed literal", raw: map[string]any{"tags": `{"open}`}, field: "tags", want: []string{}},
		{name: "list plain string", raw: map[string]any{"tags": "a,b"}, field: "tags", want: []string{}},
		{name: "list sequence kept", raw: map[string]any{"tags": []string{"x"}}, field: "tags", want: []string{"x"}},
		{name: "list any sequence", raw: map[string]any{"tags": []any{"x", "y"}}, field: "tags", want: []string{"x", "y"}},
		{name: "list other shape", raw: map[string]any{"tags": 12}, field: "tags", want: []string{}},
		{name: "enum unknown option", raw: map[string]any{"region": "not-a-declared-option"}, field: "region", want: "us-east-1"},
		{name: "enum known option", raw: map[string]any{"region": "eu-west-1"}, field: "region", want: "eu-west-1"},
		{name: "enum null", raw: map[string]any{"region": nil}, field: "region", want: "us-east-1"},
		{name: "enum without options", raw: map[string]any{"kind": "x"}, field: "kind", want: ""},
		{name: "integer non numeric", raw: map[string]any{"seats": "abc"}, field: "seats", want: int64(0)},
		{name: "integer numeric string", raw: map[string]any{"seats": "42"}, field: "seats", want: int64(42)},
		{name: "integer float", raw: map[string]any{"seats": float64(7)}, field: "seats", want: int64(7)},
		{name: "integer null", raw: map[string]any{"seats": nil}, field: "seats", want: int64(0)},
		{name: "boolean truthy string", raw: map[string]any{"paused": "yes"}, field: "paused", want: true},
		{name: "boolean empty string", raw: map[string]any{"paused": ""}, field: "paused", want: false},
		{name: "boolean zero", raw: map[string]any{"paused": 0}, field: "paused", want: false},
		{name: "boolean null", raw: map[string]any{"paused": nil}, field: "paused", want: false},
		{name: "text null", raw: map[string]any{"name": nil}, field: "name", want: ""},
		{name: "text number", raw: map[string]any{"name": 12}, field: "name", want: "12"},
		{name: "text float", raw: map[string]any{"name": 1.5}, field: "name", want: "1.5"},
		{name: "opaque passthrough", raw: map[string]any{"created_at": "2024-01-01"}, field: "created_at", want: "2024-01-01"},
		{name: "opaque absent", raw: map[string]any{}, field: "created_at", want: form.Undefined},
		{name: "declared default not applied", raw: map[string]any{}, field: "plan", want: "free"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := form.NormalizeInitialValues(s, tt.raw)
			if diff := cmp.Diff(tt.want, got[tt.field]); diff != "" {
				t.Fatalf("%s mismatch (-want +got):\n%s", tt.field, diff)
			}
		})
	}
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	s := projectSchema(t)
	got := form.NormalizeInitialValues(s, map[string]any{"name": "api", "owner_id": 9})

	if _, ok := got["owner_id"]; ok {
		t.Fatalf("unknown key merged into value set")
	}
	if len(got) != s.Len() {
		t.Fatalf("value set has %d entries, want %d", len(got), s.Len())
	}
}

func TestParseBraceArray(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "{}", want: []string{}},
		{in: "{ }", want: []string{}},
		{in: "{a}", want: []string{"a"}},
		{in: `{"a\"b","c\\d"}`, want: []string{`a"b`, `c\d`}},
		{in: `{"", x}`, want: []string{"", "x"}},
		{in: "{a,,b}", wantErr: true},
		{in: "{a,}", wantErr: true},
		{in: "{{a}}", wantErr: true},
		{in: `{"a"b}`, wantErr: true},
		{in: "a,b", wantErr: true},
	}

	for _, tt := range tests {
		got, err := form.ParseBraceArray(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseBraceArray(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseBraceArray(%q): %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("ParseBraceArray(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestFormatBraceArray(t *testing.T) {
	values := []string{"plain", "with space", "", "NULL", `quo"te`, "a,b"}
	encoded := form.FormatBraceArray(values)
	if encoded != `{plain,"with space","","NULL","quo\"te","a,b"}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
	decoded, err := form.ParseBraceArray(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(values, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
