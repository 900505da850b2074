package render

import (
	gotheme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the editor form.
type RenderOptions struct {
	// Action is the URL the form posts to. Empty renders a form without an
	// action attribute.
	Action string
	// Session identifies the editing session the runtime forwards events to.
	Session string
	// HiddenFields are emitted ahead of the visible controls. The editor skips
	// submitted keys starting with "_", so chrome fields should use that prefix.
	HiddenFields []HiddenField
	// Errors surfaces server-side validation feedback keyed by submission
	// name. Use MapErrorPayload to translate issues reported against a
	// compacted document.
	Errors map[string][]string
	// FormErrors are rendered above the first block.
	FormErrors []string
	// Locale and Translator localise block titles and field labels.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
	// Theme carries resolved tokens and the asset resolver.
	Theme *gotheme.RendererConfig
}
