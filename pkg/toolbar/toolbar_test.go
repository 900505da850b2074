package toolbar_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	gotemplate "github.com/goliatone/go-template"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
	"github.com/goliatone/go-viewdef/pkg/toolbar"
)

func newToolbar(t *testing.T, opts ...toolbar.Option) *toolbar.Toolbar {
	t.Helper()
	tb, err := toolbar.New(opts...)
	if err != nil {
		t.Fatalf("new toolbar: %v", err)
	}
	return tb
}

func TestRenderPreconditions(t *testing.T) {
	tb := newToolbar(t)
	ctx := context.Background()

	cases := []struct {
		name string
		opts *toolbar.Options
		want error
	}{
		{name: "nil options", opts: nil, want: toolbar.ErrMissingOptions},
		{name: "no location", opts: &toolbar.Options{Buttons: []toolbar.Button{}}, want: toolbar.ErrMissingLocation},
		{name: "no buttons", opts: &toolbar.Options{Location: ".OG-toolbar"}, want: toolbar.ErrMissingButtons},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tb.Render(ctx, tc.opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !faults.Is(err, faults.KindPrecondition) {
				t.Fatalf("expected precondition kind, got %q", faults.KindOf(err))
			}
		})
	}
}

func TestRenderMergesDefaultsAndStylesDisabled(t *testing.T) {
	tb := newToolbar(t)

	html, err := tb.Render(context.Background(), &toolbar.Options{
		Location: ".OG-toolbar",
		Buttons: []toolbar.Button{
			{Name: "delete", State: toolbar.StateDisabled},
			{Name: "new", Handler: func(context.Context) error { return nil }},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc := testsupport.MustQuery(t, html)
	var names []string
	doc.Find("[data-og-button]").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.AttrOr("data-og-button", ""))
	})
	if diff := cmp.Diff([]string{"delete", "new"}, names); diff != "" {
		t.Fatalf("buttons mismatch (-want +got):\n%s", diff)
	}

	del := doc.Find(".og-js-delete")
	if !del.HasClass("OG-disabled") || !del.HasClass("og-level-off") {
		t.Fatalf("disabled delete not styled: %q", del.AttrOr("class", ""))
	}
	if del.AttrOr("title", "") != "DELETE" {
		t.Fatalf("expected default tooltip on delete")
	}
	if doc.Find(".og-js-new").HasClass("OG-disabled") {
		t.Fatalf("new must stay enabled")
	}

	want := map[string]string{"delete": "DELETE", "new": "NEW"}
	if diff := cmp.Diff(want, tb.Tooltips(".OG-toolbar")); diff != "" {
		t.Fatalf("tooltips mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderReplacesBindings(t *testing.T) {
	tb := newToolbar(t)
	ctx := context.Background()
	var calls []string

	render := func(label string) {
		_, err := tb.Render(ctx, &toolbar.Options{
			Location: ".OG-toolbar",
			Buttons: []toolbar.Button{{Name: "new", Handler: func(context.Context) error {
				calls = append(calls, label)
				return nil
			}}},
		})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	render("first")
	render("second")

	if err := tb.Press(ctx, ".OG-toolbar", "new"); err != nil {
		t.Fatalf("press: %v", err)
	}
	if diff := cmp.Diff([]string{"second"}, calls); diff != "" {
		t.Fatalf("handler calls mismatch (-want +got):\n%s", diff)
	}
	if err := tb.Press(ctx, ".OG-toolbar", "delete"); !errors.Is(err, toolbar.ErrUnbound) {
		t.Fatalf("expected unbound delete, got %v", err)
	}
	if err := tb.Press(ctx, ".elsewhere", "new"); !errors.Is(err, toolbar.ErrUnknownLocation) {
		t.Fatalf("expected unknown location, got %v", err)
	}
}

func TestDisabledPolicy(t *testing.T) {
	ctx := context.Background()
	pressed := 0
	opts := &toolbar.Options{
		Location: ".OG-toolbar",
		Buttons: []toolbar.Button{{
			Name:    "delete",
			State:   toolbar.StateDisabled,
			Handler: func(context.Context) error { pressed++; return nil },
		}},
	}

	styleOnly := newToolbar(t)
	if _, err := styleOnly.Render(ctx, opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := styleOnly.Press(ctx, ".OG-toolbar", "delete"); err != nil {
		t.Fatalf("style only press: %v", err)
	}

	blocking := newToolbar(t, toolbar.WithDisabledPolicy(toolbar.DisabledBlock))
	if _, err := blocking.Render(ctx, opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := blocking.Press(ctx, ".OG-toolbar", "delete"); !errors.Is(err, toolbar.ErrButtonDisabled) {
		t.Fatalf("expected ErrButtonDisabled, got %v", err)
	}
	if pressed != 1 {
		t.Fatalf("expected handler to fire once, fired %d", pressed)
	}
}

func TestDisableUnbinds(t *testing.T) {
	tb := newToolbar(t)
	ctx := context.Background()
	_, err := tb.Render(ctx, &toolbar.Options{
		Location: ".OG-toolbar",
		Buttons:  []toolbar.Button{{Name: "delete", Handler: func(context.Context) error { return nil }}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if err := tb.Disable(".OG-toolbar", "delete"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if err := tb.Press(ctx, ".OG-toolbar", "delete"); !errors.Is(err, toolbar.ErrUnbound) {
		t.Fatalf("expected disabled delete to be unbound, got %v", err)
	}
	doc := testsupport.MustQuery(t, tb.HTML(".OG-toolbar"))
	if !doc.Find(".og-js-delete").HasClass("OG-disabled") {
		t.Fatalf("expected re-rendered delete to be disabled")
	}
	if err := tb.Disable(".OG-toolbar", "archive"); !errors.Is(err, toolbar.ErrUnknownButton) {
		t.Fatalf("expected unknown button, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := toolbar.ParsePolicy("block"); err != nil || p != toolbar.DisabledBlock {
		t.Fatalf("unexpected policy %v %v", p, err)
	}
	if _, err := toolbar.ParsePolicy("hide"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestWithRendererUsesCustomTemplate(t *testing.T) {
	engine, err := gotemplate.NewRenderer(gotemplate.WithFS(fstest.MapFS{
		"templates/toolbar.tpl": {Data: []byte(`<nav data-at="{{ location }}">{% for button in buttons %}<b>{{ button.name }}</b>{% endfor %}</nav>`)},
	}))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	tb := newToolbar(t, toolbar.WithRenderer(engine), toolbar.WithDefaults(nil))

	html, err := tb.Render(context.Background(), &toolbar.Options{
		Location: "#bar",
		Buttons:  []toolbar.Button{{Name: "save"}, {Name: "<x>"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<nav data-at="#bar"><b>save</b><b>&lt;x&gt;</b></nav>`; html != want {
		t.Fatalf("unexpected markup\nwant: %s\n got: %s", want, html)
	}
}
