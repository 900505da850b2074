package orchestrator

import (
	"context"
	"errors"
	"fmt"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/internal/loader"
	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/document/schema"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/renderers/html"
	"github.com/goliatone/go-viewdef/pkg/theme"
)

const defaultRendererName = "html"

// Loader reads a document from a source.
type Loader interface {
	Load(ctx context.Context, src document.Source) (*document.Document, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(l Loader) Option {
	return func(o *Orchestrator) {
		o.loader = l
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformers registers transformers run, in order, on the loaded
// document.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// WithValidator replaces schema.Validate. Pass nil to skip validation.
func WithValidator(fn editor.ValidateFunc) Option {
	return func(o *Orchestrator) {
		o.validate = fn
		o.validateSet = true
	}
}

// WithEditorOptions forwards options to editor.Build.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(o *Orchestrator) {
		o.editorOptions = append(o.editorOptions, opts...)
	}
}

// WithThemeSelector resolves name and variant through selector for requests
// that carry no theme of their own.
func WithThemeSelector(selector gotheme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.themeName = name
		o.themeVariant = variant
	}
}

// Orchestrator coordinates the pipeline from a document source to rendered
// output: load, transform, validate, build the editor form, render.
type Orchestrator struct {
	loader          Loader
	registry        *render.Registry
	defaultRenderer string
	transformers    []Transformer
	validate        editor.ValidateFunc
	validateSet     bool
	editorOptions   []editor.Option
	themeSelector   gotheme.ThemeSelector
	themeName       string
	themeVariant    string
	initialiseErr   error
}

// New constructs an Orchestrator. Missing dependencies default to a file
// loader, schema validation and a registry holding the HTML renderer.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one pipeline run.
type Request struct {
	// Source identifies where the document lives. Optional when Document is
	// supplied.
	Source document.Source

	// Document bypasses the loader. It is edited in place.
	Document *document.Document

	// Renderer names the renderer to use; empty falls back to the default.
	Renderer string

	// RenderOptions are passed to the renderer. Validation findings on the
	// loaded document are merged into Errors and FormErrors.
	RenderOptions render.RenderOptions
}

// Prepared is the outcome of Prepare.
type Prepared struct {
	Form    *editor.Form
	Options render.RenderOptions
}

// Generate runs the full pipeline and returns the rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	prepared, err := o.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, prepared.Form, prepared.Options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Prepare loads, transforms and validates the document and builds its
// editor form without rendering it. Schema issues do not fail the run; they
// are attached to the returned options so the editor opens on them.
func (o *Orchestrator) Prepare(ctx context.Context, req Request) (*Prepared, error) {
	if ctx == nil {
		return nil, faults.New(faults.KindPrecondition, errors.New("orchestrator: context is required"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, t := range o.transformers {
		if t == nil {
			continue
		}
		if err := t.Transform(ctx, doc); err != nil {
			return nil, fmt.Errorf("orchestrator: transform document: %w", err)
		}
	}

	editorOptions := append([]editor.Option{editor.WithLogger(logger)}, o.editorOptions...)
	if o.validate != nil {
		editorOptions = append(editorOptions, editor.WithValidator(o.validate))
	}
	form, err := editor.Build(doc, editorOptions...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build form: %w", err)
	}

	options := req.RenderOptions
	if o.validate != nil {
		if err := o.validate(ctx, document.Compact(doc)); err != nil {
			if !faults.Is(err, faults.KindValidation) {
				return nil, fmt.Errorf("orchestrator: validate document: %w", err)
			}
			logger.Debug("document has schema issues", "error", err)
			options = withIssues(form, options, err)
		}
	}
	if options.Theme == nil && o.themeSelector != nil {
		cfg, err := theme.Resolve(o.themeSelector, o.themeName, o.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: resolve theme: %w", err)
		}
		options.Theme = cfg
	}
	return &Prepared{Form: form, Options: options}, nil
}

func withIssues(form *editor.Form, options render.RenderOptions, err error) render.RenderOptions {
	payload := render.IssuePayload(err)
	if payload == nil {
		options.FormErrors = render.MergeFormErrors(options.FormErrors, err.Error())
		return options
	}
	mapping := render.MapErrorPayload(form, payload)
	merged := make(map[string][]string, len(options.Errors)+len(mapping.Fields))
	for name, messages := range options.Errors {
		merged[name] = append(merged[name], messages...)
	}
	for name, messages := range mapping.Fields {
		merged[name] = append(merged[name], messages...)
	}
	if len(merged) > 0 {
		options.Errors = merged
	}
	options.FormErrors = render.MergeFormErrors(options.FormErrors, mapping.Form...)
	return options
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (*document.Document, error) {
	if req.Document != nil {
		return req.Document, nil
	}
	if req.Source == nil {
		return nil, faults.New(faults.KindPrecondition, errors.New("orchestrator: source or document is required"))
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, faults.New(faults.KindPrecondition, errors.New("orchestrator: renderer registry is nil"))
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, faults.New(faults.KindNotFound, fmt.Errorf("orchestrator: renderer %q: %w", name, err))
		}
	}

	renderer, err := o.registry.Resolve("")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = loader.New(loader.Options{})
	}
	if !o.validateSet {
		o.validate = schema.Validate
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
