package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/schema"
)

func memberSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return schema.MustNew(
		schema.Field{Name: "name", Type: schema.Text()},
		schema.Field{Name: "age", Type: schema.Optional(schema.WithDefault(schema.Integer(), 0))},
	)
}

func TestSubmitAppliesDefaults(t *testing.T) {
	f, err := form.New(memberSchema(t))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	f.Reset(map[string]any{"name": "Alice"})
	if err := f.Set("age", form.Undefined); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got form.ValueSet
	err = f.Submit(context.Background(), func(_ context.Context, values form.ValueSet) error {
		got = values
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := form.ValueSet{"name": "Alice", "age": int64(0)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateScenario(t *testing.T) {
	s := memberSchema(t)

	out, err := form.Validate(s, form.ValueSet{"name": "Alice"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if diff := cmp.Diff(form.ValueSet{"name": "Alice", "age": int64(0)}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	_, err = form.Validate(s, form.ValueSet{"name": ""})
	verr, ok := form.AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.For("name")) != 1 || len(verr.Fields()) != 1 {
		t.Fatalf("expected one issue on name, got %+v", verr.Issues)
	}
}

func TestSubmitRejectsBeforeCallingHandler(t *testing.T) {
	f, err := form.New(memberSchema(t))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	called := false
	err = f.Submit(context.Background(), func(context.Context, form.ValueSet) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("submit handler called for invalid form")
	}
	if _, ok := form.AsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if f.Submitting() {
		t.Fatalf("submitting flag left set")
	}
}

func TestSubmitReturnsHandlerError(t *testing.T) {
	f, _ := form.New(memberSchema(t))
	f.Reset(map[string]any{"name": "Bob"})

	upstream := errors.New("api: 409 conflict")
	err := f.Submit(context.Background(), func(context.Context, form.ValueSet) error {
		return upstream
	})
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSubmitWhileSubmitting(t *testing.T) {
	f, _ := form.New(memberSchema(t))
	f.Reset(map[string]any{"name": "Bob"})

	var inner error
	err := f.Submit(context.Background(), func(ctx context.Context, _ form.ValueSet) error {
		if !f.Submitting() {
			t.Errorf("submitting flag not set during handler")
		}
		inner = f.Submit(ctx, func(context.Context, form.ValueSet) error { return nil })
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !errors.Is(inner, form.ErrSubmitting) {
		t.Fatalf("expected ErrSubmitting, got %v", inner)
	}
}

func TestListInputEditing(t *testing.T) {
	s := schema.MustNew(schema.Field{Name: "tags", Type: schema.Nullable(schema.List(schema.Text()))})
	f, _ := form.New(s)

	if err := f.SetInput("tags", `["x","y"]`); err != nil {
		t.Fatalf("set input: %v", err)
	}
	v, _ := f.Value("tags")
	if diff := cmp.Diff([]string{"x", "y"}, v); diff != "" {
		t.Fatalf("list value mismatch (-want +got):\n%s", diff)
	}

	if err := f.SetInput("tags", ""); err != nil {
		t.Fatalf("clear input: %v", err)
	}
	v, _ = f.Value("tags")
	if v != nil {
		t.Fatalf("cleared list = %#v, want nil", v)
	}

	out, err := f.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if value, ok := out["tags"]; !ok || value != nil {
		t.Fatalf("nullable list should submit as null, got %#v (present=%v)", value, ok)
	}
}

func TestListInputMalformedIsRetained(t *testing.T) {
	s := schema.MustNew(schema.Field{Name: "tags", Type: schema.List(schema.Text())})
	f, _ := form.New(s)

	for _, raw := range []string{`["x",`, `{"a":1}`} {
		err := f.SetInput("tags", raw)
		var cerr *form.CoercionError
		if !errors.As(err, &cerr) {
			t.Fatalf("SetInput(%q) expected CoercionError, got %v", raw, err)
		}
		v, _ := f.Value("tags")
		if v != raw {
			t.Fatalf("malformed input not retained: %#v", v)
		}
		if got, _ := f.Input("tags"); got != raw {
			t.Fatalf("raw input = %q, want %q", got, raw)
		}
		if _, err := f.Validate(); err == nil {
			t.Fatalf("validation accepted malformed list %q", raw)
		}
	}

	if err := f.SetInput("tags", `[]`); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if f.FieldError("tags") != nil {
		t.Fatalf("coercion error not cleared")
	}
}

func TestIntegerInputUsesNoValueSentinel(t *testing.T) {
	s := schema.MustNew(schema.Field{Name: "seats", Type: schema.Optional(schema.Integer())})
	f, _ := form.New(s)

	err := f.SetInput("seats", "twelve")
	var cerr *form.CoercionError
	if !errors.As(err, &cerr) || cerr.Field != "seats" {
		t.Fatalf("expected CoercionError on seats, got %v", err)
	}
	v, _ := f.Value("seats")
	if !form.IsUndefined(v) {
		t.Fatalf("non numeric input stored %#v, want Undefined", v)
	}

	_, err = f.Validate()
	verr, ok := form.AsValidationError(err)
	if !ok || len(verr.For("seats")) != 1 {
		t.Fatalf("pending coercion error must block submission, got %v", err)
	}

	if err := f.SetInput("seats", " 12 "); err != nil {
		t.Fatalf("set input: %v", err)
	}
	v, _ = f.Value("seats")
	if v != int64(12) {
		t.Fatalf("seats = %#v, want 12", v)
	}

	if err := f.SetInput("seats", "4.5"); err == nil {
		t.Fatalf("fractional input accepted")
	}
}

func TestBooleanInputKeepsConcreteValue(t *testing.T) {
	s := schema.MustNew(schema.Field{Name: "paused", Type: schema.Boolean()})
	f, _ := form.New(s)

	if err := f.SetInput("paused", "on"); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if err := f.SetInput("paused", "maybe"); err == nil {
		t.Fatalf("expected coercion error")
	}
	v, _ := f.Value("paused")
	if v != true {
		t.Fatalf("paused = %#v, want previous true", v)
	}
}

func TestResetDoesNotMarkDirty(t *testing.T) {
	var changes []form.Change
	f, _ := form.New(memberSchema(t), form.WithChangeHandler(func(c form.Change) {
		changes = append(changes, c)
	}))

	f.Reset(map[string]any{"name": "Loaded", "age": 41})
	if f.Dirty() || len(changes) != 0 {
		t.Fatalf("reset marked form dirty (dirty=%v, changes=%d)", f.Dirty(), len(changes))
	}
	if f.Resetting() {
		t.Fatalf("resetting flag not cleared")
	}
	if v, _ := f.Value("age"); v != int64(41) {
		t.Fatalf("age = %#v, want 41", v)
	}

	if err := f.SetInput("name", "Edited"); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if !f.Dirty() || len(changes) != 1 || changes[0].Field != "name" || changes[0].Previous != "Loaded" {
		t.Fatalf("user edit not tracked: dirty=%v changes=%+v", f.Dirty(), changes)
	}
	if diff := cmp.Diff([]string{"name"}, f.DirtyFields()); diff != "" {
		t.Fatalf("dirty fields mismatch (-want +got):\n%s", diff)
	}

	if err := f.SetInput("name", "Loaded"); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if f.Dirty() {
		t.Fatalf("restoring the baseline should clear dirty state")
	}

	f.Reset(map[string]any{"name": "Other"})
	if f.Dirty() || len(changes) != 2 {
		t.Fatalf("second reset leaked change notifications: %d", len(changes))
	}
}

func TestSetUnknownField(t *testing.T) {
	f, _ := form.New(memberSchema(t))
	if err := f.Set("missing", 1); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if err := f.SetInput("missing", "1"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestNewRequiresSchema(t *testing.T) {
	_, err := form.New(nil)
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestWithIDPinsIdentifier(t *testing.T) {
	f, _ := form.New(memberSchema(t), form.WithID("settings"))
	if f.ID() != "settings" {
		t.Fatalf("id = %q", f.ID())
	}
	g, _ := form.New(memberSchema(t))
	if g.ID() == "" || g.ID() == f.ID() {
		t.Fatalf("generated id = %q", g.ID())
	}
}
