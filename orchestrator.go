// Package viewdef is the entry point for rendering view definition editors
// from documents on disk, in an fs.FS or behind a URL.
package viewdef

import (
	"context"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/orchestrator"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/theme"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Transformer mutates a loaded document before it is built.
type Transformer = orchestrator.Transformer

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the document behind source, builds its editor form and
// renders it with the named renderer ("html" when empty).
func GenerateHTML(ctx context.Context, source document.Source, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:   source,
		Renderer: rendererName,
	})
}

// GenerateHTMLFromDocument renders doc, bypassing the loader stage. doc is
// edited in place by the form built for it.
func GenerateHTMLFromDocument(ctx context.Context, doc *document.Document, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Document: doc,
		Renderer: rendererName,
	})
}

// WithPreset loads a preset transformer from data and registers it.
func WithPreset(data []byte) (orchestrator.Option, error) {
	preset, err := orchestrator.NewPresetTransformer(data)
	if err != nil {
		return nil, err
	}
	return orchestrator.WithTransformers(preset), nil
}

// WithTheme resolves name and variant against the built-in theme catalog.
func WithTheme(name, variant string) (orchestrator.Option, error) {
	catalog, err := theme.NewCatalog()
	if err != nil {
		return nil, err
	}
	return orchestrator.WithThemeSelector(catalog, name, variant), nil
}
