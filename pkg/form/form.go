package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/goliatone/go-recordform/pkg/schema"
)

// SubmitFunc receives a schema valid ValueSet.
type SubmitFunc func(ctx context.Context, values ValueSet) error

// Form holds the live edit state of one form instance.
type Form struct {
	id     string
	schema *schema.Schema

	values   ValueSet
	baseline ValueSet
	inputs   map[string]string
	errors   map[string]*CoercionError
	dirty    map[string]struct{}

	resetting  bool
	submitting atomic.Bool

	onChange ChangeHandler
	logger   *slog.Logger
}

// New builds a form seeded with DefaultValues.
func New(s *schema.Schema, options ...Option) (*Form, error) {
	if s == nil {
		return nil, &schema.SchemaError{Message: "schema is required"}
	}
	f := &Form{
		schema: s,
		logger: discardLogger(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	f.values = DefaultValues(s)
	f.rebaseline()
	return f, nil
}

// ID returns the form instance identifier.
func (f *Form) ID() string { return f.id }

// Schema returns the schema the form was built from.
func (f *Form) Schema() *schema.Schema { return f.schema }

// Reset replaces every value with NormalizeInitialValues(raw) and makes the
// result the new clean baseline. Updates applied here never reach the change
// handler and never mark fields dirty.
func (f *Form) Reset(raw map[string]any) {
	f.beginReset()
	defer f.endReset()

	next := NormalizeInitialValues(f.schema, raw)
	for _, name := range f.schema.Names() {
		f.apply(name, next[name])
	}
	f.rebaseline()
}

// Resetting reports whether a reset is being applied.
func (f *Form) Resetting() bool { return f.resetting }

func (f *Form) beginReset() {
	f.resetting = true
}

func (f *Form) endReset() {
	f.resetting = false
}

func (f *Form) rebaseline() {
	f.baseline = f.values.Clone()
	f.inputs = make(map[string]string)
	f.errors = make(map[string]*CoercionError)
	f.dirty = make(map[string]struct{})
}

// Set stores a typed value for the field as a user edit.
func (f *Form) Set(name string, value any) error {
	if !f.schema.Has(name) {
		return fmt.Errorf("form: unknown field %q", name)
	}
	delete(f.inputs, name)
	delete(f.errors, name)
	f.apply(name, value)
	return nil
}

// SetInput applies raw edit text to the field using the coercion rules of its
// base type. A *CoercionError is returned, and kept for the field, when the
// text cannot be read as the type; the raw text stays available from Input.
func (f *Form) SetInput(name, raw string) error {
	desc, ok := f.schema.Descriptor(name)
	if !ok {
		return fmt.Errorf("form: unknown field %q", name)
	}
	value, cerr := coerceInput(name, desc.Base, raw, f.values[name])
	f.inputs[name] = raw
	if cerr != nil {
		f.errors[name] = cerr
	} else {
		delete(f.errors, name)
	}
	f.apply(name, value)
	if cerr != nil {
		return cerr
	}
	return nil
}

func (f *Form) apply(name string, value any) {
	previous := f.values[name]
	f.values[name] = value

	if f.resetting {
		f.logger.Debug("form: change suppressed during reset", slog.String("form", f.id), slog.String("field", name))
		return
	}

	if reflect.DeepEqual(value, f.baseline[name]) {
		delete(f.dirty, name)
	} else {
		f.dirty[name] = struct{}{}
	}
	if f.onChange != nil {
		f.onChange(Change{Field: name, Value: value, Previous: previous})
	}
}

// Value returns the current value of a field.
func (f *Form) Value(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Values returns a copy of the current value set.
func (f *Form) Values() ValueSet { return f.values.Clone() }

// Input returns the raw edit text last applied to the field, if any.
func (f *Form) Input(name string) (string, bool) {
	raw, ok := f.inputs[name]
	return raw, ok
}

// FieldError returns the pending coercion error of a field.
func (f *Form) FieldError(name string) *CoercionError {
	return f.errors[name]
}

// CoercionErrors returns every pending coercion error in schema order.
func (f *Form) CoercionErrors() []*CoercionError {
	var out []*CoercionError
	for _, name := range f.schema.Names() {
		if err := f.errors[name]; err != nil {
			out = append(out, err)
		}
	}
	return out
}

// Dirty reports whether any field differs from the baseline through a user
// edit.
func (f *Form) Dirty() bool { return len(f.dirty) > 0 }

// IsDirty reports whether the named field was edited away from its baseline.
func (f *Form) IsDirty(name string) bool {
	_, ok := f.dirty[name]
	return ok
}

// DirtyFields lists edited fields in schema order.
func (f *Form) DirtyFields() []string {
	var out []string
	for _, name := range f.schema.Names() {
		if _, ok := f.dirty[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Submitting reports whether a submit handler is running.
func (f *Form) Submitting() bool { return f.submitting.Load() }

// Validate checks the current values. Pending coercion errors are reported
// alongside schema issues so unreadable input is never dropped silently.
func (f *Form) Validate() (ValueSet, error) {
	out, err := Validate(f.schema, f.values)

	var issues []Issue
	for _, cerr := range f.CoercionErrors() {
		issues = append(issues, Issue{Field: cerr.Field, Code: CodeInvalidType, Message: cerr.Message})
	}
	if len(issues) == 0 {
		return out, err
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		for _, issue := range verr.Issues {
			if f.errors[issue.Field] == nil {
				issues = append(issues, issue)
			}
		}
	}
	return nil, &ValidationError{Issues: sortIssues(f.schema, issues)}
}

// Submit validates the form and hands the result to submit. Validation
// failures return a *ValidationError without calling submit; a second call
// while one is running returns ErrSubmitting. Errors from submit are returned
// unchanged.
func (f *Form) Submit(ctx context.Context, submit SubmitFunc) error {
	if submit == nil {
		return errors.New("form: submit handler is required")
	}
	if !f.submitting.CompareAndSwap(false, true) {
		return ErrSubmitting
	}
	defer f.submitting.Store(false)

	if err := ctx.Err(); err != nil {
		return err
	}

	values, err := f.Validate()
	if err != nil {
		return err
	}
	f.logger.Debug("form: submitting", slog.String("form", f.id), slog.Int("fields", len(values)))
	return submit(ctx, values)
}

func sortIssues(s *schema.Schema, issues []Issue) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, name := range s.Names() {
		for _, issue := range issues {
			if issue.Field == name {
				out = append(out, issue)
			}
		}
	}
	return out
}
