// Package template defines the template engine seam used by HTML renderers.
// The pongo subpackage provides the pongo2 backed implementation.
package template
