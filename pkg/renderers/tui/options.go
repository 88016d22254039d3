package tui

import (
	"strings"

	"github.com/goliatone/go-recordform/pkg/form"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat maps a config value onto an OutputFormat.
func ParseOutputFormat(raw string) (OutputFormat, bool) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(raw))); format {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return format, true
	case "":
		return OutputFormatJSON, true
	default:
		return "", false
	}
}

// Theme captures optional message prefixes the renderer applies when
// printing feedback.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer mutates validated values before serialization.
type SubmitTransformer func(form.ValueSet) (form.ValueSet, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate validated values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithSecretFields masks input for the named text fields.
func WithSecretFields(names ...string) Option {
	return func(r *Renderer) {
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				r.secrets[trimmed] = struct{}{}
			}
		}
	}
}

// WithMaxAttempts bounds how many correction rounds Prompt runs when the
// collected values fail validation. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}
