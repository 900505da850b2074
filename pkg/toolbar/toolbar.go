// Package toolbar renders named action buttons into a page location and keeps
// the handler bound to each rendered button.
//
// Rendering a location replaces whatever was there before, including handler
// bindings and tooltips, so rendering the same options twice is idempotent.
package toolbar

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	gotemplate "github.com/goliatone/go-template"

	"github.com/goliatone/go-viewdef/pkg/render/template"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

const templateName = "templates/toolbar"

// Level is the visual level of a button.
type Level string

const (
	LevelNone   Level = ""
	LevelDanger Level = "danger"
	LevelOff    Level = "off"
)

// State is the enabled state of a button.
type State string

const (
	StateEnabled State = ""
	// StateDisabled is the disabled sentinel. Buttons carrying it are still
	// rendered, at level "off".
	StateDisabled State = "OG-disabled"
)

// DisabledPolicy decides whether pressing a disabled button runs its handler.
type DisabledPolicy int

const (
	// DisabledStyleOnly only styles disabled buttons; their handlers fire.
	DisabledStyleOnly DisabledPolicy = iota
	// DisabledBlock refuses presses on disabled buttons.
	DisabledBlock
)

// ParsePolicy maps "style" and "block" to a policy.
func ParsePolicy(value string) (DisabledPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "style":
		return DisabledStyleOnly, nil
	case "block":
		return DisabledBlock, nil
	default:
		return DisabledStyleOnly, fmt.Errorf("toolbar: unknown disabled policy %q", value)
	}
}

// Handler runs when a button is pressed.
type Handler func(ctx context.Context) error

// Button describes one toolbar entry.
type Button struct {
	Name    string
	Tooltip string
	Level   Level
	State   State
	Handler Handler
}

// Disabled reports whether the button carries the disabled sentinel.
func (b Button) Disabled() bool { return b.State == StateDisabled }

// Options is one render request.
type Options struct {
	Location string
	Buttons  []Button
}

// DefaultButtons are merged by name with every render request.
func DefaultButtons() []Button {
	return []Button{
		{Name: "delete", Tooltip: "DELETE", Level: LevelDanger},
		{Name: "new", Tooltip: "NEW"},
	}
}

type placement struct {
	buttons  []Button
	html     string
	tooltips map[string]string
}

// Toolbar renders buttons and owns their bindings, per location.
type Toolbar struct {
	mu         sync.RWMutex
	renderer   template.TemplateRenderer
	policy     DisabledPolicy
	defaults   []Button
	placements map[string]*placement
}

// Option configures a Toolbar.
type Option func(*Toolbar)

// WithRenderer overrides the template renderer. The renderer must resolve
// "templates/toolbar".
func WithRenderer(r template.TemplateRenderer) Option {
	return func(t *Toolbar) {
		if r != nil {
			t.renderer = r
		}
	}
}

// WithDisabledPolicy sets the disabled policy.
func WithDisabledPolicy(p DisabledPolicy) Option {
	return func(t *Toolbar) {
		t.policy = p
	}
}

// WithDefaults replaces the default buttons.
func WithDefaults(buttons []Button) Option {
	return func(t *Toolbar) {
		t.defaults = append([]Button(nil), buttons...)
	}
}

// New constructs a Toolbar. Without WithRenderer the embedded template is
// rendered by a go-template engine.
func New(opts ...Option) (*Toolbar, error) {
	t := &Toolbar{
		defaults:   DefaultButtons(),
		placements: make(map[string]*placement),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.renderer == nil {
		engine, err := gotemplate.NewRenderer(gotemplate.WithFS(templatesFS))
		if err != nil {
			return nil, fmt.Errorf("toolbar: template engine: %w", err)
		}
		t.renderer = engine
	}
	return t, nil
}

// Policy returns the configured disabled policy.
func (t *Toolbar) Policy() DisabledPolicy {
	return t.policy
}

// Render places the merged buttons at opts.Location, replacing earlier
// content, bindings and tooltips there, and returns the markup.
func (t *Toolbar) Render(_ context.Context, opts *Options) (string, error) {
	if opts == nil {
		return "", ErrMissingOptions
	}
	location := strings.TrimSpace(opts.Location)
	if location == "" {
		return "", ErrMissingLocation
	}
	if opts.Buttons == nil {
		return "", ErrMissingButtons
	}

	buttons := merge(t.defaults, opts.Buttons)
	html, err := t.renderButtons(location, buttons)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.placements[location] = &placement{
		buttons:  buttons,
		html:     html,
		tooltips: tooltips(buttons),
	}
	return html, nil
}

// HTML returns the markup currently placed at location.
func (t *Toolbar) HTML(location string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.placements[location]; ok {
		return p.html
	}
	return ""
}

// Buttons returns the merged buttons rendered at location.
func (t *Toolbar) Buttons(location string) []Button {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.placements[location]; ok {
		return append([]Button(nil), p.buttons...)
	}
	return nil
}

// Tooltips returns the tooltips initialised for location, keyed by button.
func (t *Toolbar) Tooltips(location string) map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.placements[location]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(p.tooltips))
	for k, v := range p.tooltips {
		out[k] = v
	}
	return out
}

// Press fires the handler bound to the named button.
func (t *Toolbar) Press(ctx context.Context, location, name string) error {
	t.mu.RLock()
	p, ok := t.placements[location]
	if !ok {
		t.mu.RUnlock()
		return fmt.Errorf("%w: %s", ErrUnknownLocation, location)
	}
	button, found := find(p.buttons, name)
	t.mu.RUnlock()

	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownButton, name)
	}
	if button.Disabled() && t.policy == DisabledBlock {
		return fmt.Errorf("%w: %s", ErrButtonDisabled, name)
	}
	if button.Handler == nil {
		return fmt.Errorf("%w: %s", ErrUnbound, name)
	}
	return button.Handler(ctx)
}

// Disable switches a rendered button to the disabled state and detaches its
// handler.
func (t *Toolbar) Disable(location, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.placements[location]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLocation, location)
	}
	idx := -1
	for i, b := range p.buttons {
		if b.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownButton, name)
	}

	buttons := append([]Button(nil), p.buttons...)
	buttons[idx].State = StateDisabled
	buttons[idx].Level = LevelOff
	buttons[idx].Handler = nil

	html, err := t.renderButtons(location, buttons)
	if err != nil {
		return err
	}
	p.buttons = buttons
	p.html = html
	return nil
}

func (t *Toolbar) renderButtons(location string, buttons []Button) (string, error) {
	views := make([]map[string]any, 0, len(buttons))
	for _, b := range buttons {
		views = append(views, map[string]any{
			"name":     b.Name,
			"tooltip":  b.Tooltip,
			"level":    string(b.Level),
			"disabled": b.Disabled(),
		})
	}
	html, err := t.renderer.RenderTemplate(templateName, map[string]any{
		"location": location,
		"buttons":  views,
	})
	if err != nil {
		return "", fmt.Errorf("toolbar: render: %w", err)
	}
	return strings.TrimSpace(html), nil
}

// merge overlays supplied buttons on the defaults by name. Defaults keep their
// position; unknown names are appended in order. The disabled sentinel forces
// level "off".
func merge(defaults, supplied []Button) []Button {
	out := append([]Button(nil), defaults...)
	for _, b := range supplied {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			continue
		}
		b.Name = name
		idx := -1
		for i := range out {
			if out[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, b)
			continue
		}
		base := out[idx]
		if b.Tooltip != "" {
			base.Tooltip = b.Tooltip
		}
		if b.Level != LevelNone {
			base.Level = b.Level
		}
		if b.State != StateEnabled {
			base.State = b.State
		}
		if b.Handler != nil {
			base.Handler = b.Handler
		}
		out[idx] = base
	}
	for i := range out {
		if out[i].Disabled() {
			out[i].Level = LevelOff
		}
	}
	return out
}

func tooltips(buttons []Button) map[string]string {
	out := make(map[string]string, len(buttons))
	for _, b := range buttons {
		if b.Tooltip != "" {
			out[b.Name] = b.Tooltip
		}
	}
	return out
}

func find(buttons []Button, name string) (Button, bool) {
	for _, b := range buttons {
		if b.Name == name {
			return b, true
		}
	}
	return Button{}, false
}
