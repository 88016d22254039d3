// Package form implements the schema driven form engine: default synthesis,
// normalisation of loosely typed records into schema shaped value sets,
// per-field input coercion, reset suppression, validation and submission.
//
// A Form is owned by a single caller and mutated synchronously; concurrent
// mutation is not supported. Only the submitting flag may be observed from
// other goroutines while a submit handler runs.
package form
