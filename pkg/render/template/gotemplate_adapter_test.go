package template_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-viewdef/pkg/render/template/gotemplate"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
)

var templatesFS = fstest.MapFS{
	"hello.tpl":      {Data: []byte("Hello {{ name }}!")},
	"use-global.tpl": {Data: []byte("env={{ settings.env }}")},
	"use-filter.tpl": {Data: []byte("{{ name|shout }}")},
	"escape.tpl":     {Data: []byte("<span>{{ label }}</span>{{ html|safe }}")},
}

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := "Hello Ada!"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_EscapesUnlessSafe(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("escape", map[string]any{
		"label": "<b>Bump</b>",
		"html":  "<i>child</i>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<span>&lt;b&gt;Bump&lt;/b&gt;</span><i>child</i>"
	if result != want {
		t.Fatalf("escape mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestGoTemplateEngine_RenderString(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "x"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "1-x" {
		t.Fatalf("unexpected output %q", result)
	}

	type row struct {
		Version int     `json:"version"`
		Ratio   float64 `json:"ratio"`
	}
	result, err = engine.Render("{{ r.version }}/{{ n }}/{% if r.ratio %}{{ r.ratio }}{% endif %}", map[string]any{
		"r": row{Version: 3, Ratio: 0.5},
		"n": int64(12),
	})
	if err != nil {
		t.Fatalf("render struct: %v", err)
	}
	if !strings.HasPrefix(result, "3/12/0.5") {
		t.Fatalf("numbers must keep their integer form, got %q", result)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestGoTemplateEngine_DefaultFilters(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Render("{{ name|domid }}|{{ pad|trim }}|{{ list|jsonify|safe }}", map[string]any{
		"name": "calculationConfiguration.0.name",
		"pad":  "  x  ",
		"list": []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `calculationConfiguration_0_name|x|["a","b"]`
	if result != want {
		t.Fatalf("filters mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestGoTemplateEngine_Options(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without a template source")
	}

	engine, err := gotemplate.New(
		gotemplate.WithFS(fstest.MapFS{"greet.html": {Data: []byte("{{ greeting }}, {{ name|trim }}")}}),
		gotemplate.WithExtension("html"),
		gotemplate.WithGlobals(map[string]any{"greeting": "Hi"}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.RenderTemplate("greet", struct {
		Name string `json:"name"`
	}{Name: " Ada "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hi, Ada" {
		t.Fatalf("unexpected output %q", result)
	}

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if err := engine.RegisterFilter("trim", func(input any, _ any) (any, error) { return input, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}
