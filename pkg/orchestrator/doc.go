// Package orchestrator wires schema resolution, form construction and
// rendering behind one entry point. Schemas come from named adapters (schema
// documents, OpenAPI operations or components, SQLite tables); rendering goes
// through a render.Registry.
package orchestrator
