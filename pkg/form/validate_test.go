package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/schema"
)

func constrainedSchema() *schema.Schema {
	return schema.MustNew(
		schema.Field{
			Name:        "slug",
			Type:        schema.Text(),
			Validations: []schema.ValidationRule{schema.MinLengthRule(2), schema.MaxLengthRule(8), schema.PatternRule(`^[a-z-]+$`)},
		},
		schema.Field{
			Name:        "jwt_exp",
			Type:        schema.Optional(schema.Integer()),
			Validations: []schema.ValidationRule{schema.MinRule(30), schema.MaxRule(3600)},
		},
		schema.Field{Name: "provider", Type: schema.Nullable(schema.Enum("twilio", "vonage"))},
		schema.Field{
			Name:        "hosts",
			Type:        schema.Optional(schema.List(schema.Text())),
			Validations: []schema.ValidationRule{schema.MaxLengthRule(2)},
		},
		schema.Field{Name: "enabled", Type: schema.Optional(schema.Boolean())},
	)
}

func TestValidateIssues(t *testing.T) {
	s := constrainedSchema()
	base := func(overrides form.ValueSet) form.ValueSet {
		values := form.ValueSet{"slug": "docs", "provider": "twilio"}
		for k, v := range overrides {
			values[k] = v
		}
		return values
	}

	tests := []struct {
		name   string
		values form.ValueSet
		want   []form.Issue
	}{
		{
			name:   "missing required text",
			values: form.ValueSet{"provider": nil},
			want:   []form.Issue{{Field: "slug", Code: form.CodeRequired, Message: "Required"}},
		},
		{
			name:   "undefined counts as absent",
			values: base(form.ValueSet{"slug": form.Undefined}),
			want:   []form.Issue{{Field: "slug", Code: form.CodeRequired, Message: "Required"}},
		},
		{
			name:   "too short",
			values: base(form.ValueSet{"slug": "a"}),
			want:   []form.Issue{{Field: "slug", Code: form.CodeTooShort, Message: "String must contain at least 2 character(s)"}},
		},
		{
			name:   "pattern",
			values: base(form.ValueSet{"slug": "Docs"}),
			want:   []form.Issue{{Field: "slug", Code: form.CodePattern, Message: "Invalid format"}},
		},
		{
			name:   "below minimum",
			values: base(form.ValueSet{"jwt_exp": int64(5)}),
			want:   []form.Issue{{Field: "jwt_exp", Code: form.CodeTooSmall, Message: "Number must be greater than or equal to 30"}},
		},
		{
			name:   "fractional integer",
			values: base(form.ValueSet{"jwt_exp": 60.5}),
			want:   []form.Issue{{Field: "jwt_exp", Code: form.CodeInvalidType, Message: "Expected integer, received number"}},
		},
		{
			name:   "unknown enum option",
			values: base(form.ValueSet{"provider": "sns"}),
			want: []form.Issue{{
				Field:   "provider",
				Code:    form.CodeInvalidEnum,
				Message: "Invalid enum value. Expected 'twilio' | 'vonage', received 'sns'",
			}},
		},
		{
			name:   "null on non nullable",
			values: base(form.ValueSet{"enabled": nil}),
			want:   []form.Issue{{Field: "enabled", Code: form.CodeInvalidType, Message: "Expected boolean, received null"}},
		},
		{
			name:   "list given as text",
			values: base(form.ValueSet{"hosts": "a.example,b.example"}),
			want:   []form.Issue{{Field: "hosts", Code: form.CodeInvalidType, Message: "Expected array, received string"}},
		},
		{
			name:   "list with non strings",
			values: base(form.ValueSet{"hosts": []any{"a", 1.0}}),
			want:   []form.Issue{{Field: "hosts", Code: form.CodeInvalidType, Message: "Expected array of strings"}},
		},
		{
			name:   "list too long",
			values: base(form.ValueSet{"hosts": []string{"a", "b", "c"}}),
			want:   []form.Issue{{Field: "hosts", Code: form.CodeTooBig, Message: "Array must contain at most 2 element(s)"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := form.Validate(s, tt.values)
			verr, ok := form.AsValidationError(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if diff := cmp.Diff(tt.want, verr.Issues); diff != "" {
				t.Fatalf("issues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	s := constrainedSchema()
	out, err := form.Validate(s, form.ValueSet{
		"slug":     "docs",
		"jwt_exp":  float64(120),
		"provider": nil,
		"hosts":    []any{"a.example"},
		"extra":    "dropped",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := form.ValueSet{
		"slug":     "docs",
		"jwt_exp":  int64(120),
		"provider": nil,
		"hosts":    []string{"a.example"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &form.ValidationError{Issues: []form.Issue{
		{Field: "a", Message: "one"},
		{Field: "b", Message: "two"},
		{Field: "c", Message: "three"},
		{Field: "d", Message: "four"},
	}}
	want := "form: validation failed: a: one; b: two; c: three; ... (total 4)"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}
