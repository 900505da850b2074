package html_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/history"
	"github.com/goliatone/go-viewdef/pkg/message"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/renderers/html"
	"github.com/goliatone/go-viewdef/pkg/renderers/html/components"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
	"github.com/goliatone/go-viewdef/pkg/theme"
)

func newForm(t *testing.T) *editor.Form {
	t.Helper()

	form, err := editor.Build(testsupport.SampleDocument(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return form
}

func newRenderer(t *testing.T, opts ...html.Option) *html.Renderer {
	t.Helper()

	r, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderFormStructure(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Render(context.Background(), newForm(t), render.RenderOptions{
		Action:       "/configs/DbCfg~1/save",
		Session:      "sess-1",
		HiddenFields: render.ChromeFields("DbCfg~1", "Equity Desk", 2),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := testsupport.MustQuery(t, string(out))

	form := doc.Find("form#view_def")
	if form.Length() != 1 {
		t.Fatalf("expected root form, got markup:\n%s", out)
	}
	if session, _ := form.Attr("data-og-session"); session != "sess-1" {
		t.Fatalf("unexpected session %q", session)
	}
	var hidden []string
	form.Find(`input[type="hidden"]`).Each(func(_ int, s *goquery.Selection) {
		hidden = append(hidden, s.AttrOr("name", "")+"="+s.AttrOr("value", ""))
	})
	if diff := cmp.Diff([]string{"_id=DbCfg~1", "_name=Equity Desk", "_version=2"}, hidden); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}

	var order []string
	form.Children().Filter("section, fieldset, div").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok {
			order = append(order, id)
		} else if inner := s.Find("[id]").First(); inner.Length() == 1 {
			order = append(order, inner.AttrOr("id", ""))
		}
	})
	want := []string{editor.IDIdentity, editor.IDResultModel, editor.IDExecution, editor.IDTabs, editor.IDSets}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("block order mismatch (-want +got):\n%s", diff)
	}

	var modeIDs []string
	doc.Find("#" + editor.IDResultModel + " select").Each(func(_ int, s *goquery.Selection) {
		modeIDs = append(modeIDs, s.AttrOr("id", ""))
	})
	if diff := cmp.Diff([]string{"view_def_0", "view_def_1", "view_def_2", "view_def_3", "view_def_4"}, modeIDs); diff != "" {
		t.Fatalf("result model ids mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Find(`select[name="resultModelDefinition.positionOutputMode"] option[selected]`).AttrOr("value", ""); got != "ALL" {
		t.Fatalf("expected ALL selected, got %q", got)
	}
	for _, id := range []string{"minDeltaCalcPeriod", "maxDeltaCalcPeriod", "minFullCalcPeriod", "maxFullCalcPeriod"} {
		if doc.Find(`input[type="number"]#`+id).Length() != 1 {
			t.Fatalf("missing execution field %s", id)
		}
	}

	tabs := doc.Find("ul#" + editor.IDTabs + " li.og-tab")
	if tabs.Length() != 3 {
		t.Fatalf("expected 3 tabs, got %d", tabs.Length())
	}
	if active := doc.Find("li.og-tab.og-active"); active.Length() != 1 || strings.TrimSpace(active.Text()) != "Default" {
		t.Fatalf("expected Default tab active, got %q", active.Text())
	}
	if n := doc.Find(".og-set[hidden]").Length(); n != 2 {
		t.Fatalf("expected 2 hidden sets, got %d", n)
	}
	if n := doc.Find(".og-requirement").Length(); n != 3 {
		t.Fatalf("expected 3 requirements, got %d", n)
	}
	if title := doc.Find(".og-requirement h4").First().Text(); title != "Portfolio Requirement 1" {
		t.Fatalf("unexpected requirement title %q", title)
	}

	name := doc.Find(`input[name="calculationConfiguration.0.name"]`)
	if action := name.AttrOr("data-og-action", ""); action != string(editor.ActionRename) {
		t.Fatalf("expected rename binding on set name, got %q", action)
	}
	props := doc.Find(`textarea[name="calculationConfiguration.1.defaultProperties"]`).Text()
	if !strings.Contains(props, `"Shift": "0.01"`) {
		t.Fatalf("expected pretty printed properties, got %q", props)
	}
}

func TestRenderShowsFieldAndFormErrors(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Render(context.Background(), newForm(t), render.RenderOptions{
		Errors:     map[string][]string{"currency": {"must be an ISO code"}},
		FormErrors: []string{"stale version", " stale version "},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := testsupport.MustQuery(t, string(out))

	field := doc.Find("#currency").Parent()
	if !field.HasClass("og-invalid") || strings.TrimSpace(field.Find(".og-error").Text()) != "must be an ISO code" {
		t.Fatalf("expected inline error on currency, got %s", out)
	}
	if n := doc.Find(".og-form-errors li").Length(); n != 1 {
		t.Fatalf("expected one deduplicated form error, got %d", n)
	}
}

func TestRenderLookupChoices(t *testing.T) {
	var calls []string
	source := html.OptionSourceFunc(func(_ context.Context, resource string) ([]components.Choice, error) {
		calls = append(calls, resource)
		switch resource {
		case editor.ResourceSecurities:
			return []components.Choice{{Value: "EQUITY", Label: "Equity"}, {Value: "BOND", Label: "Bond"}}, nil
		case editor.ResourcePortfolios:
			return nil, errors.New("portfolio service down")
		default:
			return nil, nil
		}
	})
	r := newRenderer(t, html.WithOptionSource(source))
	out, err := r.Render(context.Background(), newForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := testsupport.MustQuery(t, string(out))

	first := doc.Find(`select[name="calculationConfiguration.0.portfolioRequirementsBySecurityType.0.securityType"]`)
	if got := first.Find("option[selected]").AttrOr("value", ""); got != "EQUITY" {
		t.Fatalf("expected EQUITY selected, got %q", got)
	}
	if _, remote := first.Attr("data-og-remote"); remote {
		t.Fatalf("server side choices must not be marked remote")
	}

	second := doc.Find(`select[name="calculationConfiguration.0.portfolioRequirementsBySecurityType.1.securityType"]`)
	if got := second.Find("option").Eq(1).AttrOr("value", ""); got != "FX_FORWARD" {
		t.Fatalf("expected unknown stored value kept first, got %q", got)
	}

	portfolio := doc.Find("select#identifier")
	if portfolio.AttrOr("data-og-remote", "") != "true" {
		t.Fatalf("expected failing source to fall back to remote lookup")
	}

	counts := map[string]int{}
	for _, c := range calls {
		counts[c]++
	}
	for resource, n := range counts {
		if n != 1 {
			t.Fatalf("expected %s fetched once per render, got %d", resource, n)
		}
	}
}

func TestEncodePatchesRendersAppendedBlocks(t *testing.T) {
	r := newRenderer(t)
	form := newForm(t)

	patches, err := form.AddColumn(1)
	if err != nil {
		t.Fatalf("add column: %v", err)
	}
	wire, err := render.EncodePatches(context.Background(), r, patches, render.RenderOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(wire) != 1 || wire[0].Op != editor.OpAppend {
		t.Fatalf("unexpected patches %+v", wire)
	}
	doc := testsupport.MustQuery(t, wire[0].HTML)
	column := doc.Find(".og-column")
	if column.Length() != 1 {
		t.Fatalf("expected column markup, got %q", wire[0].HTML)
	}
	if doc.Find(`select[name="calculationConfiguration.1.portfolioRequirementsBySecurityType.0.securityType"]`).Length() != 1 {
		t.Fatalf("expected security type field in appended column, got %q", wire[0].HTML)
	}
	if column.Find(`[data-og-action="add-requirement"]`).AttrOr("data-og-block", "") != column.AttrOr("id", "") {
		t.Fatalf("add requirement must be bound to the column block")
	}

	removal, err := form.RemoveSet(0)
	if err != nil {
		t.Fatalf("remove set: %v", err)
	}
	wire, err = render.EncodePatches(context.Background(), nil, removal, render.RenderOptions{})
	if err != nil {
		t.Fatalf("encode without fragments: %v", err)
	}
	var ops []editor.Op
	for _, p := range wire {
		ops = append(ops, p.Op)
	}
	if diff := cmp.Diff([]editor.Op{editor.OpRemove, editor.OpRemove, editor.OpActivate, editor.OpShow}, ops); diff != "" {
		t.Fatalf("removal ops mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderDefaultPage(t *testing.T) {
	r := newRenderer(t)
	cfg, err := theme.Resolve(mustCatalog(t), theme.DefaultName, "dark")
	if err != nil {
		t.Fatalf("resolve theme: %v", err)
	}

	out, err := r.RenderPage(context.Background(), render.Page{
		Kind:     render.PageDefault,
		Title:    "Configs",
		Toolbar:  `<div class="og-new" data-og-button="new"><span>new</span></div>`,
		Messages: []message.View{{Location: ".OG-details", Text: message.TextLoading}},
		Listing: render.Listing{
			Types: []string{"ViewDefinition", "YieldCurveDefinition"},
			Type:  "ViewDefinition",
			Items: []render.ListingItem{{ID: "DbCfg~1", Name: "Equity Desk", Type: "ViewDefinition"}},
		},
		Options: render.RenderOptions{Theme: cfg},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	doc := testsupport.MustQuery(t, string(out))

	if got := strings.TrimSpace(doc.Find(".og-history .og-empty").Text()); got != "no recently viewed configs" {
		t.Fatalf("unexpected history text %q", got)
	}
	if doc.Find(`.OG-toolbar [data-og-button="new"]`).Length() != 1 {
		t.Fatalf("expected toolbar markup in page")
	}
	if got := strings.TrimSpace(doc.Find(".og-message").Text()); got != message.TextLoading {
		t.Fatalf("unexpected message %q", got)
	}
	if got := doc.Find(`select[name="type"] option[selected]`).AttrOr("value", ""); got != "ViewDefinition" {
		t.Fatalf("unexpected selected type %q", got)
	}
	if href := doc.Find(".og-results a").AttrOr("href", ""); href != "/configs/DbCfg~1" {
		t.Fatalf("unexpected listing link %q", href)
	}
	if href := doc.Find(`link[rel="stylesheet"]`).AttrOr("href", ""); href != "/assets/editor.css" {
		t.Fatalf("unexpected stylesheet %q", href)
	}
	if style := doc.Find("style").Text(); !strings.Contains(style, "--surface: #111827") {
		t.Fatalf("expected dark tokens in inline style, got %q", style)
	}
}

func TestRenderGenericPageAndDialog(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderPage(context.Background(), render.Page{
		Kind:     render.PageGeneric,
		Title:    "Curve",
		ConfigID: "DbCfg~9",
		History:  []history.Entry{{Name: "Curve", Value: "/configs/DbCfg~9"}},
		Generic: &render.GenericView{
			Name:    "Curve",
			Type:    "YieldCurveDefinition",
			Format:  render.FormatXML,
			Body:    "<curve/>",
			Deleted: true,
		},
		Dialog: &message.Dialog{
			Type:    message.DialogConfirm,
			Title:   "Delete configuration?",
			Buttons: []string{"Delete", "Cancel"},
			Action:  "/configs/DbCfg~9/delete",
		},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	doc := testsupport.MustQuery(t, string(out))

	area := doc.Find(`textarea[data-og="config-data"]`)
	if area.Text() != "<curve/>" {
		t.Fatalf("unexpected config body %q", area.Text())
	}
	if _, ok := area.Attr("readonly"); !ok {
		t.Fatalf("deleted configuration must be read only")
	}
	if doc.Find(".og-js-save-config").Length() != 0 {
		t.Fatalf("deleted configuration must not offer save")
	}
	if id := doc.Find("body").AttrOr("data-og-config", ""); id != "DbCfg~9" {
		t.Fatalf("unexpected body config id %q", id)
	}
	if doc.Find(".og-history a").Text() != "Curve" {
		t.Fatalf("expected history entry")
	}
	dialog := doc.Find(".og-dialog.og-dialog-confirm")
	if dialog.Find("form").AttrOr("action", "") != "/configs/DbCfg~9/delete" || dialog.Find("button").Length() != 2 {
		t.Fatalf("unexpected dialog markup: %s", out)
	}
}

func mustCatalog(t *testing.T) *theme.Catalog {
	t.Helper()

	catalog, err := theme.NewCatalog(theme.DefaultManifest())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}
