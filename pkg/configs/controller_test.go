package configs_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/history"
	"github.com/goliatone/go-viewdef/pkg/message"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/store"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
	"github.com/goliatone/go-viewdef/pkg/toolbar"
)

type fixture struct {
	ctrl     *configs.Controller
	service  *configs.StoreService
	messages *message.Center
	toolbar  *toolbar.Toolbar
	viewID   string
	xmlID    string
}

func newFixture(t *testing.T, opts ...func(*configs.Options)) *fixture {
	t.Helper()
	ctx := context.Background()

	service := configs.NewStoreService(store.NewMemory())
	view, err := service.Create(ctx, configs.CreateRequest{Name: "Equity View", Data: string(testsupport.SampleJSON())})
	if err != nil {
		t.Fatalf("seed view: %v", err)
	}
	matrix, err := service.Create(ctx, configs.CreateRequest{Name: "FX Matrix", Data: `<CurrencyMatrix><cell/></CurrencyMatrix>`})
	if err != nil {
		t.Fatalf("seed matrix: %v", err)
	}

	tb, err := toolbar.New()
	if err != nil {
		t.Fatalf("toolbar: %v", err)
	}
	messages := message.NewCenter()
	options := configs.Options{Service: service, Toolbar: tb, Messages: messages}
	for _, fn := range opts {
		fn(&options)
	}
	ctrl, err := configs.New(options)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return &fixture{ctrl: ctrl, service: service, messages: messages, toolbar: tb, viewID: view.ID, xmlID: matrix.ID}
}

func buttonByName(t *testing.T, tb *toolbar.Toolbar, name string) toolbar.Button {
	t.Helper()
	for _, b := range tb.Buttons(configs.LocationToolbar) {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("button %q not rendered", name)
	return toolbar.Button{}
}

func TestNewRequiresService(t *testing.T) {
	_, err := configs.New(configs.Options{})
	if !errors.Is(err, configs.ErrMissingService) || !faults.Is(err, faults.KindPrecondition) {
		t.Fatalf("expected missing service precondition, got %v", err)
	}
}

func TestDefaultPage(t *testing.T) {
	f := newFixture(t)
	page, err := f.ctrl.DefaultPage(context.Background(), configs.Query{})
	if err != nil {
		t.Fatalf("default page: %v", err)
	}
	if page.Kind != render.PageDefault || page.Title != configs.TitleDefault {
		t.Fatalf("unexpected page: %+v", page)
	}
	if len(page.History) != 0 {
		t.Fatalf("expected empty history, got %v", page.History)
	}
	if len(page.Listing.Items) != 2 || len(page.Listing.Types) != len(configs.Types) {
		t.Fatalf("unexpected listing: %+v", page.Listing)
	}
	del := buttonByName(t, f.toolbar, "delete")
	if !del.Disabled() || del.Level != toolbar.LevelOff {
		t.Fatalf("expected disabled delete button, got %+v", del)
	}

	if err := f.ctrl.Press(context.Background(), "new"); err != nil {
		t.Fatalf("press new: %v", err)
	}
	page, _ = f.ctrl.DefaultPage(context.Background(), configs.Query{})
	if page.Dialog == nil || page.Dialog.Type != message.DialogInput || page.Dialog.Action != "/configs/new" {
		t.Fatalf("expected new-config dialog, got %+v", page.Dialog)
	}
	page, _ = f.ctrl.DefaultPage(context.Background(), configs.Query{})
	if page.Dialog != nil {
		t.Fatalf("dialog must be shown once")
	}
}

func TestDetailsPicksGenerator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.ctrl.Details(ctx, f.viewID, configs.Query{})
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if page.Kind != render.PageEditor || page.Form == nil {
		t.Fatalf("expected editor page, got %s", page.Kind)
	}
	if page.Options.Action != "/configs/"+f.viewID+"/save" {
		t.Fatalf("unexpected action %q", page.Options.Action)
	}
	chrome := render.ReadChrome(map[string]string{
		render.FieldConfigID:   page.Options.HiddenFields[0].Value,
		render.FieldConfigName: page.Options.HiddenFields[1].Value,
		render.FieldVersion:    page.Options.HiddenFields[2].Value,
	})
	if diff := cmp.Diff(render.Chrome{ID: f.viewID, Name: "Equity View", Version: 1}, chrome); diff != "" {
		t.Fatalf("chrome mismatch (-want +got):\n%s", diff)
	}

	page, err = f.ctrl.Details(ctx, f.xmlID, configs.Query{})
	if err != nil {
		t.Fatalf("details xml: %v", err)
	}
	if page.Kind != render.PageGeneric || page.Generic.Format != configs.FormatXML {
		t.Fatalf("expected generic xml page, got %+v", page.Generic)
	}
	if !strings.HasPrefix(page.Generic.Body, "<CurrencyMatrix>") {
		t.Fatalf("xml body must be shown as stored, got %q", page.Generic.Body)
	}

	want := []history.Entry{
		{Name: "FX Matrix", Value: "/configs/" + f.xmlID},
		{Name: "Equity View", Value: "/configs/" + f.viewID},
	}
	if diff := cmp.Diff(want, page.History); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if f.ctrl.Current() != f.xmlID {
		t.Fatalf("unexpected current id %q", f.ctrl.Current())
	}
}

func TestDetailsGenericJSONIsIndented(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg, err := f.service.Create(ctx, configs.CreateRequest{Name: "Curve", Type: "YieldCurveDefinition", Data: `{"a":{"b":1}}`})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	page, err := f.ctrl.Details(ctx, cfg.ID, configs.Query{})
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	want := "{\n    \"a\": {\n        \"b\": 1\n    }\n}"
	if page.Generic.Body != want {
		t.Fatalf("unexpected body:\n%s", page.Generic.Body)
	}
}

func TestDetailsDeletedShowsBannerAndDisablesDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.ctrl.Delete(ctx, f.viewID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	page, err := f.ctrl.Details(ctx, f.viewID, configs.Query{})
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if page.Kind != render.PageGeneric || !page.Generic.Deleted {
		t.Fatalf("expected read-only generic page, got %s", page.Kind)
	}
	found := false
	for _, m := range page.Messages {
		if m.Location == configs.LocationDetails && m.Persistent && m.HTML == configs.DeletedWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected deleted banner, got %+v", page.Messages)
	}
	del := buttonByName(t, f.toolbar, "delete")
	if !del.Disabled() || del.Handler != nil {
		t.Fatalf("expected disabled, unbound delete button, got %+v", del)
	}
	if err := f.ctrl.Press(ctx, "delete"); !errors.Is(err, toolbar.ErrUnbound) {
		t.Fatalf("expected unbound press, got %v", err)
	}
	if !strings.Contains(page.Toolbar, "OG-disabled") {
		t.Fatalf("toolbar markup must show the disabled delete button")
	}
}

func TestDetailsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.ctrl.Details(ctx, " ", configs.Query{}); !errors.Is(err, configs.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if _, err := f.ctrl.Details(ctx, "missing", configs.Query{}); !faults.Is(err, faults.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	broken := newFixture(t, func(o *configs.Options) {
		o.Service = failingService{err: errors.New("connection refused")}
	})
	if _, err := broken.ctrl.Details(ctx, "x", configs.Query{}); !faults.Is(err, faults.KindService) {
		t.Fatalf("expected service fault, got %v", err)
	}
}

type failingService struct {
	configs.Service
	err error
}

func (s failingService) Get(context.Context, string) (configs.Config, error) {
	return configs.Config{}, s.err
}

func (s failingService) Search(context.Context, configs.Query) ([]configs.Config, error) {
	return nil, s.err
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type observingService struct {
	configs.Service
	observe func()
}

func (s observingService) Get(ctx context.Context, id string) (configs.Config, error) {
	s.observe()
	return s.Service.Get(ctx, id)
}

func TestDetailsLoadingMessages(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	messages := message.NewCenter(message.WithClock(clk.Now))
	var seen []string

	f := newFixture(t, func(o *configs.Options) {
		o.Messages = messages
		inner := o.Service
		o.Service = observingService{Service: inner, observe: func() {
			view, _ := messages.Current(configs.LocationDetails)
			seen = append(seen, view.Text)
			clk.Advance(configs.DefaultSlowAfter)
			view, _ = messages.Current(configs.LocationDetails)
			seen = append(seen, view.Text)
		}}
	})

	if _, err := f.ctrl.Details(context.Background(), f.xmlID, configs.Query{}); err != nil {
		t.Fatalf("details: %v", err)
	}
	if diff := cmp.Diff([]string{message.TextLoading, message.TextStillLoading}, seen); diff != "" {
		t.Fatalf("loading stages mismatch (-want +got):\n%s", diff)
	}
	if _, ok := messages.Current(configs.LocationDetails); ok {
		t.Fatalf("loading message must be cleared after the fetch")
	}
}

func TestSaveChoosesFormat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.ctrl.Save(ctx, configs.SaveRequest{ID: f.xmlID, Name: "FX Matrix 2", Data: "<CurrencyMatrix/>"})
	if err != nil {
		t.Fatalf("save xml: %v", err)
	}
	if cfg.Format != configs.FormatXML || cfg.Name != "FX Matrix 2" || cfg.Version != 2 {
		t.Fatalf("unexpected saved config: %+v", cfg)
	}
	if view, _ := f.messages.Current(configs.LocationSave); view.Text != message.TextSaved {
		t.Fatalf("expected saved message, got %+v", view)
	}

	if _, err := f.ctrl.Save(ctx, configs.SaveRequest{ID: f.viewID, Data: `{"name": 1`}); !faults.Is(err, faults.KindValidation) {
		t.Fatalf("expected invalid JSON to fail validation, got %v", err)
	}
	if _, err := f.ctrl.Save(ctx, configs.SaveRequest{ID: f.viewID, Data: `{"name":"x","currency":"usd"}`}); !faults.Is(err, faults.KindValidation) {
		t.Fatalf("expected schema validation failure, got %v", err)
	}
}

type blockingService struct {
	configs.Service
	entered chan struct{}
	release chan struct{}
}

func (s blockingService) Save(ctx context.Context, req configs.SaveRequest) (configs.Config, error) {
	close(s.entered)
	<-s.release
	return s.Service.Save(ctx, req)
}

func TestSaveRejectsConcurrentSave(t *testing.T) {
	entered, release := make(chan struct{}), make(chan struct{})
	f := newFixture(t, func(o *configs.Options) {
		o.Service = blockingService{Service: o.Service, entered: entered, release: release}
	})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.ctrl.Save(ctx, configs.SaveRequest{ID: f.xmlID, Data: "<CurrencyMatrix/>"})
		done <- err
	}()
	<-entered

	if _, err := f.ctrl.Save(ctx, configs.SaveRequest{ID: f.xmlID, Data: "<CurrencyMatrix/>"}); !errors.Is(err, configs.ErrSaveInFlight) {
		t.Fatalf("expected ErrSaveInFlight, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
}

func TestSaveFormCompactsAndSaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.ctrl.Details(ctx, f.viewID, configs.Query{})
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	form := page.Form
	if _, err := form.RemoveSet(1); err != nil {
		t.Fatalf("remove set: %v", err)
	}
	values := form.Values()
	values[render.FieldConfigName] = "Equity View"
	values[render.FieldVersion] = "1"

	cfg, err := f.ctrl.SaveForm(ctx, f.viewID, form, values)
	if err != nil {
		t.Fatalf("save form: %v", err)
	}
	if cfg.Version != 2 || strings.Contains(cfg.Body, "null") || strings.Contains(cfg.Body, `"Bump"`) {
		t.Fatalf("expected compacted body without the removed set, got %s", cfg.Body)
	}

	if _, err := f.ctrl.SaveForm(ctx, f.viewID, form, values); !errors.Is(err, store.ErrVersion) {
		t.Fatalf("expected stale version conflict, got %v", err)
	}
}

func TestCreateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ctrl.Create(ctx, "", "<a/>"); !errors.Is(err, configs.ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
	cfg, err := f.ctrl.Create(ctx, "Surface", "<VolatilitySurfaceDefinition/>")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cfg.Type != "VolatilitySurfaceDefinition" || cfg.Format != configs.FormatXML {
		t.Fatalf("unexpected created config: %+v", cfg)
	}

	if _, err := f.ctrl.Create(ctx, "Broken", "<a>"); err == nil {
		t.Fatalf("expected invalid XML to fail")
	}
	if d, ok := f.messages.Dialog(); !ok || d.Type != message.DialogError {
		t.Fatalf("expected error dialog after failed create, got %+v", d)
	}

	if _, err := f.ctrl.Details(ctx, cfg.ID, configs.Query{}); err != nil {
		t.Fatalf("details: %v", err)
	}
	if err := f.ctrl.Press(ctx, "delete"); err != nil {
		t.Fatalf("press delete: %v", err)
	}
	d, ok := f.messages.Dialog()
	if !ok || d.Type != message.DialogConfirm || d.Action != "/configs/"+cfg.ID+"/delete" {
		t.Fatalf("unexpected delete dialog: %+v", d)
	}
	if err := f.ctrl.Delete(ctx, cfg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := f.messages.Dialog(); ok {
		t.Fatalf("dialog must close on delete")
	}

	listing, err := f.ctrl.Search(ctx, configs.Query{Type: "VolatilitySurfaceDefinition"})
	if err != nil || len(listing.Items) != 0 {
		t.Fatalf("deleted config must leave the listing, got %+v %v", listing.Items, err)
	}
}
