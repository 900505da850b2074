package viewdef_test

import (
	"strings"
	"testing"
	"testing/fstest"

	viewdef "github.com/goliatone/go-viewdef"
	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/orchestrator"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
)

func TestGenerateHTMLFromDocumentWithPresetAndTheme(t *testing.T) {
	preset, err := viewdef.WithPreset([]byte("values:\n  name: Renamed\n"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	themed, err := viewdef.WithTheme("default", "dark")
	if err != nil {
		t.Fatalf("theme: %v", err)
	}

	doc := testsupport.SampleDocument(t)
	out, err := viewdef.GenerateHTMLFromDocument(testsupport.Context(), doc, "", preset, themed)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	page := testsupport.MustQuery(t, string(out))
	if got := strings.TrimSpace(page.Find(".og-form-title").Text()); got != "Renamed" {
		t.Fatalf("unexpected title %q", got)
	}
	if doc.Name != "Renamed" {
		t.Fatalf("expected document edited in place, got %q", doc.Name)
	}
}

func TestGenerateHTMLFromFS(t *testing.T) {
	loader := viewdef.NewLoader(viewdef.LoaderOptions{FileSystem: fstest.MapFS{
		"defs/viewdef.json": {Data: testsupport.SampleJSON()},
	}})
	out, err := viewdef.GenerateHTML(
		testsupport.Context(),
		document.SourceFromFS("defs/viewdef.json"),
		"html",
		orchestrator.WithLoader(loader),
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "Stress") {
		t.Fatalf("expected rendered calculation sets")
	}
}
