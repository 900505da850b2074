package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/orchestrator"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
	"github.com/goliatone/go-viewdef/pkg/theme"
)

type captureRenderer struct {
	form    *editor.Form
	options render.RenderOptions
}

func (r *captureRenderer) Name() string        { return "capture" }
func (r *captureRenderer) ContentType() string { return "text/plain" }

func (r *captureRenderer) Render(_ context.Context, form *editor.Form, options render.RenderOptions) ([]byte, error) {
	r.form = form
	r.options = options
	return []byte(form.Root().Title), nil
}

func sampleFile(t *testing.T) document.Source {
	t.Helper()

	path := filepath.Join(t.TempDir(), "viewdef.json")
	if err := os.WriteFile(path, testsupport.SampleJSON(), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return document.SourceFromFile(path)
}

func captureOrchestrator(opts ...orchestrator.Option) (*orchestrator.Orchestrator, *captureRenderer) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	opts = append([]orchestrator.Option{orchestrator.WithRegistry(registry)}, opts...)
	return orchestrator.New(opts...), renderer
}

func TestGenerateRendersHTMLByDefault(t *testing.T) {
	out, err := orchestrator.New().Generate(testsupport.Context(), orchestrator.Request{
		Source: sampleFile(t),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	doc := testsupport.MustQuery(t, string(out))
	if doc.Find("form#"+editor.IDRoot).Length() != 1 {
		t.Fatalf("expected editor form in output:\n%s", out)
	}
	for _, label := range []string{"Default", "Bump", "Stress"} {
		if !strings.Contains(doc.Find("#"+editor.IDTabs).Text(), label) {
			t.Fatalf("expected tab %q", label)
		}
	}
	if doc.Find(".og-invalid").Length() != 0 {
		t.Fatalf("valid document must not render field errors")
	}
}

func TestPrepareAttachesSchemaIssues(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	doc.Currency = "usd"

	orch := orchestrator.New()
	prepared, err := orch.Prepare(testsupport.Context(), orchestrator.Request{
		Document: doc,
		RenderOptions: render.RenderOptions{
			Errors: map[string][]string{document.FieldName: {"taken"}},
		},
	})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(prepared.Options.Errors[document.FieldCurrency]) == 0 {
		t.Fatalf("expected currency issue, got %v", prepared.Options.Errors)
	}
	if diff := cmp.Diff([]string{"taken"}, prepared.Options.Errors[document.FieldName]); diff != "" {
		t.Fatalf("caller errors must be kept (-want +got):\n%s", diff)
	}

	out, err := orch.Generate(testsupport.Context(), orchestrator.Request{Document: doc})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	page := testsupport.MustQuery(t, string(out))
	if !page.Find("#currency").Parent().HasClass("og-invalid") {
		t.Fatalf("expected currency marked invalid")
	}
}

func TestWithValidatorNilSkipsValidation(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	doc.Currency = "usd"

	orch, renderer := captureOrchestrator(orchestrator.WithValidator(nil))
	if _, err := orch.Generate(testsupport.Context(), orchestrator.Request{Document: doc}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.options.Errors != nil {
		t.Fatalf("expected no errors, got %v", renderer.options.Errors)
	}
	sub, err := renderer.form.Submit(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("submit without validator: %v", err)
	}
	if sub.Document.Currency != "usd" {
		t.Fatalf("unexpected currency %q", sub.Document.Currency)
	}
}

func TestValidatorFailuresOtherThanIssuesAbort(t *testing.T) {
	boom := faults.New(faults.KindService, errors.New("boom"))
	orch, _ := captureOrchestrator(orchestrator.WithValidator(func(context.Context, *document.Document) error {
		return boom
	}))
	_, err := orch.Generate(testsupport.Context(), orchestrator.Request{Document: testsupport.SampleDocument(t)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected validator error, got %v", err)
	}
}

func TestTransformersRunBeforeBuild(t *testing.T) {
	preset, err := orchestrator.NewPresetTransformerFromFS(fstest.MapFS{
		"preset.yaml": {Data: []byte("remove:\n  - calculationConfiguration.1\nvalues:\n  currency: EUR\n  calculationConfiguration.0.name: Base\n")},
	}, "preset.yaml")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	var seen []string
	trace := orchestrator.TransformerFunc(func(_ context.Context, doc *document.Document) error {
		seen = append(seen, doc.Currency)
		return nil
	})

	orch, renderer := captureOrchestrator(orchestrator.WithTransformers(preset, trace))
	if _, err := orch.Generate(testsupport.Context(), orchestrator.Request{Source: sampleFile(t)}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]string{"EUR"}, seen); diff != "" {
		t.Fatalf("transformer order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Base", "Stress"}, renderer.form.Tabs().Labels()); diff != "" {
		t.Fatalf("tabs mismatch (-want +got):\n%s", diff)
	}
	if got := renderer.form.Values()[document.FieldCurrency]; got != "EUR" {
		t.Fatalf("unexpected currency %q", got)
	}
}

func TestPresetTransformerRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":       "  ",
		"unknown key": "colour: red\n",
		"bad path":    "remove:\n  - a..b\n",
	}
	for name, data := range cases {
		if _, err := orchestrator.NewPresetTransformer([]byte(data)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	preset, err := orchestrator.NewPresetTransformer([]byte("remove:\n  - calculationConfiguration.9\n"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	err = preset.Transform(testsupport.Context(), testsupport.SampleDocument(t))
	if !errors.Is(err, document.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestRendererSelection(t *testing.T) {
	orch, renderer := captureOrchestrator(orchestrator.WithDefaultRenderer("missing"))

	out, err := orch.Generate(testsupport.Context(), orchestrator.Request{Document: testsupport.SampleDocument(t)})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.form == nil || string(out) != renderer.form.Root().Title {
		t.Fatalf("expected fallback to the first registered renderer, got %q", out)
	}

	_, err = orch.Generate(testsupport.Context(), orchestrator.Request{
		Document: testsupport.SampleDocument(t),
		Renderer: "pdf",
	})
	if !faults.Is(err, faults.KindNotFound) {
		t.Fatalf("expected not found for unknown renderer, got %v", err)
	}
}

func TestThemeSelectorFillsMissingTheme(t *testing.T) {
	catalog, err := theme.NewCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	orch, renderer := captureOrchestrator(orchestrator.WithThemeSelector(catalog, theme.DefaultName, "dark"))

	if _, err := orch.Generate(testsupport.Context(), orchestrator.Request{Document: testsupport.SampleDocument(t)}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.options.Theme == nil || renderer.options.Theme.Variant != "dark" {
		t.Fatalf("expected dark theme, got %+v", renderer.options.Theme)
	}

	explicit, err := theme.Resolve(catalog, theme.DefaultName, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, err = orch.Generate(testsupport.Context(), orchestrator.Request{
		Document:      testsupport.SampleDocument(t),
		RenderOptions: render.RenderOptions{Theme: explicit},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.options.Theme != explicit {
		t.Fatalf("request theme must win over the selector")
	}
}

func TestPrepareErrors(t *testing.T) {
	orch, _ := captureOrchestrator()

	_, err := orch.Prepare(testsupport.Context(), orchestrator.Request{})
	if !faults.Is(err, faults.KindPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}

	missing := document.SourceFromFile(filepath.Join(t.TempDir(), "absent.json"))
	_, err = orch.Prepare(testsupport.Context(), orchestrator.Request{Source: missing})
	if !faults.Is(err, faults.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	ctx, cancel := context.WithCancel(testsupport.Context())
	cancel()
	if _, err := orch.Prepare(ctx, orchestrator.Request{Document: testsupport.SampleDocument(t)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
