package theme

import (
	"testing"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"
)

func TestResolveMergesVariant(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	cfg, err := Resolve(catalog, DefaultName, "dark")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Variant != "dark" {
		t.Fatalf("expected dark variant, got %q", cfg.Variant)
	}
	if cfg.Tokens["surface"] != "#111827" || cfg.Tokens["accent"] != "#2563eb" {
		t.Fatalf("tokens not merged: %v", cfg.Tokens)
	}
	if cfg.CSSVars["--level-danger"] != "#c81e1e" {
		t.Fatalf("css vars not derived: %v", cfg.CSSVars)
	}
	if got := AssetURL(cfg, "editor.runtime"); got != "/assets/editor.js" {
		t.Fatalf("unexpected asset url %q", got)
	}
	if got := AssetURL(cfg, "missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
}

func TestSelectFallsBack(t *testing.T) {
	acme := &gotheme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"accent": "#123456"},
	}
	catalog, err := NewCatalog(acme, DefaultManifest())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if diff := cmp.Diff([]string{"acme", DefaultName}, catalog.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	selection, err := catalog.Select("nope", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Theme != "acme" || selection.Variant != "" {
		t.Fatalf("unexpected selection %+v", selection)
	}
}

func TestInlineStyleIsSorted(t *testing.T) {
	cfg := &gotheme.RendererConfig{CSSVars: map[string]string{"--b": "2", "--a": "1"}}
	if got := InlineStyle(cfg); got != "--a: 1; --b: 2;" {
		t.Fatalf("unexpected style %q", got)
	}
	if InlineStyle(nil) != "" {
		t.Fatalf("nil config should render empty style")
	}
}
