// Package openapi loads OpenAPI documents and derives form schemas from their
// object schemas. A component schema or an operation's request body becomes a
// *schema.Schema whose fields follow the property declarations: required
// properties are mandatory, nullable ones accept null, defaults and bounds
// carry over as defaults and validation rules.
//
// kin-openapi types stay inside this package; callers only see Source,
// Document, Spec and the schema package.
package openapi
