package html

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/render"
	rendertemplate "github.com/goliatone/go-viewdef/pkg/render/template"
	"github.com/goliatone/go-viewdef/pkg/render/template/gotemplate"
	"github.com/goliatone/go-viewdef/pkg/renderers/html/components"
	"github.com/goliatone/go-viewdef/pkg/theme"
)

// Theme asset keys.
const (
	AssetStylesheet = "editor.stylesheet"
	AssetRuntime    = "editor.runtime"
)

// OptionSource supplies the choices of lookup fields.
type OptionSource interface {
	Choices(ctx context.Context, resource string) ([]components.Choice, error)
}

// OptionSourceFunc adapts a function to OptionSource.
type OptionSourceFunc func(ctx context.Context, resource string) ([]components.Choice, error)

// Choices implements OptionSource.
func (fn OptionSourceFunc) Choices(ctx context.Context, resource string) ([]components.Choice, error) {
	return fn(ctx, resource)
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	options          OptionSource
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default field components.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithOptionSource resolves lookup choices server side. Without a source
// lookups are filled in by the browser runtime.
func WithOptionSource(source OptionSource) Option {
	return func(cfg *config) {
		cfg.options = source
	}
}

// Renderer renders editor forms, block fragments and pages as HTML.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
	options    OptionSource
}

var (
	_ render.Renderer         = (*Renderer)(nil)
	_ render.FragmentRenderer = (*Renderer)(nil)
	_ render.PageRenderer     = (*Renderer)(nil)
)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:  templates,
		components: cfg.components,
		options:    cfg.options,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders the whole form: hidden chrome, every mounted block and the
// save action.
func (r *Renderer) Render(ctx context.Context, form *editor.Form, options render.RenderOptions) ([]byte, error) {
	if form == nil {
		return nil, fmt.Errorf("html renderer: form is required")
	}
	st := r.newState(ctx, options)

	var body strings.Builder
	for _, child := range form.Root().Children {
		html, err := r.renderBlock(ctx, child, st)
		if err != nil {
			return nil, err
		}
		body.WriteString(html)
	}

	hidden := make([]map[string]any, 0, len(options.HiddenFields))
	for _, field := range options.HiddenFields {
		if field.Name == "" {
			continue
		}
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	result, err := r.templates.RenderTemplate("templates/form", map[string]any{
		"form": map[string]any{
			"id":      form.Root().ID,
			"title":   form.Root().Title,
			"action":  options.Action,
			"session": options.Session,
			"hidden":  hidden,
			"errors":  render.MergeFormErrors(options.FormErrors),
		},
		"body": body.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render form: %w", err)
	}
	return []byte(result), nil
}

// RenderBlock renders block and its subtree.
func (r *Renderer) RenderBlock(ctx context.Context, block *editor.Block, options render.RenderOptions) ([]byte, error) {
	if block == nil {
		return nil, fmt.Errorf("html renderer: block is required")
	}
	html, err := r.renderBlock(ctx, block, r.newState(ctx, options))
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

type renderState struct {
	options  render.RenderOptions
	loc      render.Localizer
	data     components.ComponentData
	choices  map[string][]components.Choice
	partials map[string]string
	logger   *slog.Logger
}

func (r *Renderer) newState(ctx context.Context, options render.RenderOptions) *renderState {
	var partials map[string]string
	if options.Theme != nil {
		partials = options.Theme.Partials
	}
	return &renderState{
		options:  options,
		loc:      render.NewLocalizer(options),
		data:     components.ComponentData{Template: r.templates, ThemePartials: partials},
		choices:  make(map[string][]components.Choice),
		partials: partials,
		logger:   ctxlog.FromContext(ctx),
	}
}

func (r *Renderer) renderBlock(ctx context.Context, b *editor.Block, st *renderState) (string, error) {
	var fields bytes.Buffer
	for _, field := range b.Fields {
		view := r.fieldView(ctx, b, field, st)
		descriptor, ok := r.components.Descriptor(view.Kind)
		if !ok {
			return "", fmt.Errorf("html renderer: no component for field kind %q", view.Kind)
		}
		if err := descriptor.Renderer(&fields, view, st.data); err != nil {
			return "", fmt.Errorf("html renderer: field %s: %w", field.Name, err)
		}
	}

	var children strings.Builder
	for _, child := range b.Children {
		html, err := r.renderBlock(ctx, child, st)
		if err != nil {
			return "", err
		}
		children.WriteString(html)
	}

	can := make(map[string]bool)
	for _, action := range b.Actions() {
		can[strings.ReplaceAll(string(action), "-", "_")] = true
	}

	templateName := "templates/blocks/" + string(b.Kind)
	if candidate := strings.TrimSpace(st.partials["blocks."+string(b.Kind)]); candidate != "" {
		templateName = candidate
	}
	result, err := r.templates.RenderTemplate(templateName, map[string]any{
		"block": map[string]any{
			"id":     b.ID,
			"kind":   string(b.Kind),
			"title":  st.loc.Title(b),
			"label":  b.Label,
			"hidden": b.Hidden,
			"active": b.Active,
		},
		"fields":   fields.String(),
		"children": children.String(),
		"can":      can,
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: render block %s: %w", b.ID, err)
	}
	return result, nil
}

func (r *Renderer) fieldView(ctx context.Context, b *editor.Block, f editor.Field, st *renderState) components.Field {
	view := components.Field{
		ID:          f.ID,
		Name:        f.Name,
		Kind:        string(f.Kind),
		Label:       st.loc.Label(f),
		Value:       f.Value,
		Placeholder: st.loc.Placeholder(f),
		Resource:    f.Resource,
		Errors:      st.options.Errors[f.Name],
		Block:       b.ID,
	}
	if view.ID == "" {
		view.ID = strings.ReplaceAll(f.Name, ".", "_")
	}
	if last, ok := f.Path.Last(); ok && last.Name() == document.FieldName && b.Handles(editor.ActionRename) {
		view.Action = string(editor.ActionRename)
	}

	switch f.Kind {
	case editor.FieldSelect:
		for _, option := range f.Options {
			view.Choices = append(view.Choices, components.Choice{
				Value:    option,
				Label:    option,
				Selected: option == f.Value,
			})
		}
	case editor.FieldLookup:
		view.Choices = st.lookup(ctx, r.options, f.Resource)
	}
	return view
}

func (st *renderState) lookup(ctx context.Context, source OptionSource, resource string) []components.Choice {
	if source == nil || resource == "" {
		return nil
	}
	if cached, ok := st.choices[resource]; ok {
		return append([]components.Choice(nil), cached...)
	}
	choices, err := source.Choices(ctx, resource)
	if err != nil {
		st.logger.Warn("lookup choices unavailable", "resource", resource, "error", err)
		choices = nil
	}
	st.choices[resource] = choices
	return append([]components.Choice(nil), choices...)
}

func stylesheetURL(options render.RenderOptions) string {
	if url := theme.AssetURL(options.Theme, AssetStylesheet); url != "" {
		return url
	}
	return "/assets/" + StylesheetName
}

func runtimeURL(options render.RenderOptions) string {
	if url := theme.AssetURL(options.Theme, AssetRuntime); url != "" {
		return url
	}
	return "/assets/" + RuntimeScriptName
}
