// Package theme resolves go-theme manifests into the renderer configuration
// used by the HTML editor: merged tokens, CSS custom properties and asset URLs.
package theme

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// DefaultName is the theme shipped with the editor.
const DefaultName = "default"

// DefaultManifest returns the built-in manifest. The dark variant only
// overrides colour tokens.
func DefaultManifest() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    DefaultName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"surface":      "#ffffff",
			"text":         "#1f2933",
			"border":       "#d2d6dc",
			"accent":       "#2563eb",
			"level-danger": "#c81e1e",
			"level-off":    "#9aa5b1",
			"banner":       "#fdf6b2",
		},
		Assets: gotheme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"editor.stylesheet": "editor.css",
				"editor.runtime":    "editor.js",
			},
		},
		Variants: map[string]gotheme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#111827",
					"text":    "#f9fafb",
					"border":  "#374151",
					"banner":  "#723b13",
				},
			},
		},
	}
}

// Catalog is a ThemeSelector over registered manifests. Manifests are also
// registered with a go-theme registry so they are validated on the way in.
type Catalog struct {
	mu        sync.RWMutex
	registry  gotheme.ThemeProvider
	manifests map[string]*gotheme.Manifest
	fallback  string
}

var _ gotheme.ThemeSelector = (*Catalog)(nil)

// NewCatalog registers the supplied manifests, or the default manifest when
// none are given. The first manifest is the fallback for unknown names.
func NewCatalog(manifests ...*gotheme.Manifest) (*Catalog, error) {
	if len(manifests) == 0 {
		manifests = []*gotheme.Manifest{DefaultManifest()}
	}
	registry := gotheme.NewRegistry()
	c := &Catalog{
		registry:  registry,
		manifests: make(map[string]*gotheme.Manifest, len(manifests)),
	}
	for _, manifest := range manifests {
		if manifest == nil {
			return nil, errors.New("theme: nil manifest")
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("theme: register %q: %w", manifest.Name, err)
		}
		c.manifests[manifest.Name] = manifest
		if c.fallback == "" {
			c.fallback = manifest.Name
		}
	}
	return c, nil
}

// Select resolves name and variant. Unknown names fall back to the first
// registered manifest and unknown variants to the base tokens.
func (c *Catalog) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	manifest, ok := c.manifests[name]
	if !ok {
		manifest, ok = c.manifests[c.fallback]
		if !ok {
			return nil, fmt.Errorf("theme: %q not registered", name)
		}
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &gotheme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

// Provider exposes the underlying go-theme registry.
func (c *Catalog) Provider() gotheme.ThemeProvider {
	return c.registry
}

// Names lists registered theme names.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.manifests))
	for name := range c.manifests {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve selects a theme and flattens it into a renderer configuration.
func Resolve(selector gotheme.ThemeSelector, name, variant string) (*gotheme.RendererConfig, error) {
	if selector == nil {
		return nil, errors.New("theme: selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return FromSelection(selection), nil
}

// FromSelection merges the base manifest with the selected variant.
func FromSelection(selection *gotheme.Selection) *gotheme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	tokens := merge(manifest.Tokens, variant.Tokens)
	partials := merge(manifest.Templates, variant.Templates)
	files := merge(manifest.Assets.Files, variant.Assets.Files)
	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}

	return &gotheme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  CSSVars(tokens),
		AssetURL: assetResolver(prefix, files),
	}
}

// CSSVars maps tokens to custom property names.
func CSSVars(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		out["--"+key] = value
	}
	return out
}

// InlineStyle renders CSS variables as a style attribute value, sorted by
// name.
func InlineStyle(cfg *gotheme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(cfg.CSSVars[key])
		b.WriteByte(';')
	}
	return b.String()
}

// AssetURL resolves key through cfg, returning "" when unknown.
func AssetURL(cfg *gotheme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return cfg.AssetURL(key)
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
			return file
		}
		if prefix == "" {
			return "/" + file
		}
		return path.Join(prefix, file)
	}
}

func merge(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
