package tui

import (
	"log/slog"

	"github.com/goliatone/go-viewdef/components/lookups"
)

// OutputFormat controls how the submitted document is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the compact document, the body sent to the
	// configuration service.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits the submitted field values.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits the document indented for reading.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat maps a flag value onto an OutputFormat.
func ParseOutputFormat(value string) (OutputFormat, bool) {
	switch OutputFormat(value) {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return OutputFormat(value), true
	case "":
		return OutputFormatJSON, true
	}
	return OutputFormatJSON, false
}

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling renderer logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

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

// WithLookups sets the source of the selector choices. Without one the
// embedded lists are used.
func WithLookups(source lookups.Source) Option {
	return func(r *Renderer) {
		r.lookups = source
	}
}

// WithLogger sets the logger used for prompt traces.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
