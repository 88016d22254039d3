package schema_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordform/pkg/schema"
)

func TestUnwrapIsOrderIndependent(t *testing.T) {
	base := schema.Enum("a", "b")
	variants := []*schema.Type{
		base,
		schema.Optional(schema.Nullable(schema.WithDefault(base, "a"))),
		schema.WithDefault(schema.Optional(schema.Nullable(base)), "a"),
		schema.Nullable(schema.Effects(schema.Optional(base), "trim")),
		schema.Effects(schema.Effects(base, "lower"), "trim"),
	}

	for _, variant := range variants {
		got, err := schema.Unwrap(variant)
		if err != nil {
			t.Fatalf("unwrap: %v", err)
		}
		if diff := cmp.Diff(*base, got); diff != "" {
			t.Fatalf("base mismatch (-want +got):\n%s", diff)
		}

		again, err := schema.Unwrap(&got)
		if err != nil {
			t.Fatalf("unwrap twice: %v", err)
		}
		if diff := cmp.Diff(got, again); diff != "" {
			t.Fatalf("unwrap not idempotent (-want +got):\n%s", diff)
		}
	}
}

func TestDescribeCollectsModifiers(t *testing.T) {
	desc, err := schema.Describe(schema.WithDefault(schema.Optional(schema.Nullable(schema.Integer())), int64(7)))
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !desc.Optional || !desc.Nullable || !desc.HasDefault() {
		t.Fatalf("modifiers not collected: %+v", desc)
	}
	if got := desc.Default.Resolve(); got != int64(7) {
		t.Fatalf("default = %v, want 7", got)
	}
	if desc.Base.Kind != schema.KindInteger {
		t.Fatalf("base kind = %s, want integer", desc.Base.Kind)
	}
}

func TestDefaultFuncIsLazy(t *testing.T) {
	calls := 0
	typ := schema.WithDefaultFunc(schema.Text(), func() any {
		calls++
		return "generated"
	})
	desc, err := schema.Describe(typ)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if calls != 0 {
		t.Fatalf("default evaluated during describe")
	}
	if desc.Default.Resolve() != "generated" || calls != 1 {
		t.Fatalf("default func not invoked once, calls=%d", calls)
	}
}

func TestUnwrapErrors(t *testing.T) {
	cyclic := &schema.Type{Kind: schema.KindOptional}
	cyclic.Inner = cyclic

	tests := []struct {
		name string
		typ  *schema.Type
	}{
		{name: "nil", typ: nil},
		{name: "wrapper without inner", typ: &schema.Type{Kind: schema.KindNullable}},
		{name: "unknown kind", typ: &schema.Type{Kind: "date"}},
		{name: "default without value", typ: &schema.Type{Kind: schema.KindDefault, Inner: schema.Text()}},
		{name: "cycle", typ: cyclic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Unwrap(tt.typ)
			var schemaErr *schema.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
		})
	}
}

func TestNewRejectsMalformedFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []schema.Field
		field  string
	}{
		{
			name:   "duplicate names",
			fields: []schema.Field{{Name: "a", Type: schema.Text()}, {Name: "a", Type: schema.Integer()}},
			field:  "a",
		},
		{
			name:   "empty name",
			fields: []schema.Field{{Name: " ", Type: schema.Text()}},
		},
		{
			name:   "missing type",
			fields: []schema.Field{{Name: "a"}},
			field:  "a",
		},
		{
			name:   "list of integers",
			fields: []schema.Field{{Name: "ids", Type: schema.List(schema.Integer())}},
			field:  "ids",
		},
		{
			name:   "duplicate enum option",
			fields: []schema.Field{{Name: "kind", Type: schema.Enum("x", "x")}},
			field:  "kind",
		},
		{
			name:   "bad pattern",
			fields: []schema.Field{{Name: "slug", Type: schema.Text(), Validations: []schema.ValidationRule{schema.PatternRule("(")}}},
			field:  "slug",
		},
		{
			name:   "integer default of text",
			fields: []schema.Field{{Name: "n", Type: schema.WithDefault(schema.Integer(), "abc")}},
			field:  "n",
		},
		{
			name:   "enum default outside options",
			fields: []schema.Field{{Name: "plan", Type: schema.WithDefault(schema.Enum("a", "b"), "z")}},
			field:  "plan",
		},
		{
			name:   "list default of number",
			fields: []schema.Field{{Name: "tags", Type: schema.WithDefault(schema.List(schema.Text()), 5)}},
			field:  "tags",
		},
		{
			name:   "null default on required field",
			fields: []schema.Field{{Name: "title", Type: schema.WithDefault(schema.Text(), nil)}},
			field:  "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.New(tt.fields...)
			var schemaErr *schema.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if schemaErr.Field != tt.field {
				t.Fatalf("error field = %q, want %q", schemaErr.Field, tt.field)
			}
		})
	}
}

func TestSchemaPreservesOrder(t *testing.T) {
	s := schema.MustNew(
		schema.Field{Name: "zeta", Type: schema.Text()},
		schema.Field{Name: "alpha", Type: schema.Boolean()},
		schema.Field{Name: "mid", Type: schema.Integer()},
	)
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, s.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !s.Has("alpha") || s.Has("missing") {
		t.Fatalf("Has lookup mismatch")
	}
}

func TestLoadFileYAML(t *testing.T) {
	s, err := schema.LoadFile("testdata/auth_config.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff([]string{"site_url", "jwt_exp", "disable_signup", "sms_provider", "uri_allow_list", "updated_at"}, s.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	jwt, _ := s.Descriptor("jwt_exp")
	if !jwt.Optional || jwt.Default.Resolve() != int64(3600) {
		t.Fatalf("jwt_exp descriptor = %+v", jwt)
	}

	provider, _ := s.Descriptor("sms_provider")
	if !provider.Nullable || provider.Optional {
		t.Fatalf("sms_provider modifiers = %+v", provider)
	}
	if diff := cmp.Diff([]string{"twilio", "messagebird", "vonage"}, provider.Base.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	updated, _ := s.Descriptor("updated_at")
	if updated.Base.Kind != schema.KindOpaque || updated.Base.Name != "timestamp" {
		t.Fatalf("updated_at base = %+v", updated.Base)
	}

	site, _ := s.Field("site_url")
	constraints := site.Constraints()
	if constraints.MinLength == nil || *constraints.MinLength != 1 {
		t.Fatalf("site_url minLength not parsed: %+v", constraints)
	}
}

func TestParseJSONDocument(t *testing.T) {
	fsys := fstest.MapFS{
		"bucket.json": {Data: []byte(`{"fields":[
			{"name":"name","type":"string"},
			{"name":"public","type":"bool","default":false},
			{"name":"allowed_mime_types","type":"array","default":["image/png"]},
			{"name":"file_size_limit","type":"int","default":1048576}
		]}`)},
	}

	s, err := schema.LoadFS(fsys, "bucket.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	mime, _ := s.Descriptor("allowed_mime_types")
	if diff := cmp.Diff([]string{"image/png"}, mime.Default.Resolve()); diff != "" {
		t.Fatalf("list default mismatch (-want +got):\n%s", diff)
	}
	limit, _ := s.Descriptor("file_size_limit")
	if limit.Default.Resolve() != int64(1048576) {
		t.Fatalf("integer default = %#v", limit.Default.Resolve())
	}
}

func TestParseRejectsUnknownTypes(t *testing.T) {
	_, err := schema.Parse([]byte("fields:\n  - name: when\n    type: datetime\n"), "inline")
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.Field != "when" {
		t.Fatalf("expected SchemaError for when, got %v", err)
	}

	_, err = schema.Parse([]byte("fields:\n  - name: n\n    type: integer\n    default: abc\n"), "inline")
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for mismatched default, got %v", err)
	}

	_, err = schema.Parse([]byte(`{"fields": [{"name": "big", "type": "integer", "default": 1e30}]}`), "inline")
	if !errors.As(err, &schemaErr) || schemaErr.Field != "big" {
		t.Fatalf("expected SchemaError for out of range default, got %v", err)
	}
}

func TestNewAcceptsTypedDefaults(t *testing.T) {
	_, err := schema.New(
		schema.Field{Name: "n", Type: schema.WithDefault(schema.Integer(), 3600)},
		schema.Field{Name: "plan", Type: schema.WithDefault(schema.Enum("a", "b"), "b")},
		schema.Field{Name: "tags", Type: schema.WithDefault(schema.List(schema.Text()), []string{"x"})},
		schema.Field{Name: "note", Type: schema.Nullable(schema.WithDefault(schema.Text(), nil))},
		schema.Field{Name: "stamp", Type: schema.WithDefaultFunc(schema.Integer(), func() any { return "lazy" })},
		schema.Field{Name: "raw", Type: schema.WithDefault(schema.Opaque("json"), map[string]any{"k": 1})},
	)
	if err != nil {
		t.Fatalf("expected typed defaults to be accepted, got %v", err)
	}
}
