package viewdef

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRuntimeAssetsFSContainsRuntimeScript(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "editor.js")
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "data-og-session") {
		t.Fatalf("expected runtime script to bind to editor sessions")
	}
}

func TestRuntimeAssetsFSContainsStylesheet(t *testing.T) {
	if _, err := fs.ReadFile(RuntimeAssetsFS(), "editor.css"); err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/form.tpl"); err != nil {
		t.Fatalf("expected form template to be readable: %v", err)
	}
}
