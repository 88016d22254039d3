// Package httpform serves a schema-driven form over net/http.
//
// GET renders the form from the loaded record. POST applies the posted
// inputs, validates and submits; failures re-render the form with inline
// messages and status 422. A successful submit answers with the canonical
// values as JSON.
package httpform
