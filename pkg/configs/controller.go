package configs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/history"
	"github.com/goliatone/go-viewdef/pkg/message"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/toolbar"
)

// Page locations.
const (
	LocationToolbar = ".OG-toolbar"
	LocationDetails = ".OG-js-details-panel"
	LocationSave    = ".OG-details"
)

// Page texts.
const (
	TitleDefault   = "Configs"
	DeletedWarning = "This configuration has been deleted"
	EmptyHistory   = "no recently viewed configs"
)

// DefaultSlowAfter is when "loading..." turns into "still loading...".
const DefaultSlowAfter = 3 * time.Second

// Options wires the controller's collaborators. Only Service is required.
type Options struct {
	Service    Service
	Toolbar    *toolbar.Toolbar
	Messages   *message.Center
	History    *history.List
	Generators *Generators
	Logger     *slog.Logger
	// BasePath prefixes page routes and form actions, "/configs" by default.
	BasePath  string
	SlowAfter time.Duration
}

// Controller drives the configuration pages of one user.
type Controller struct {
	service    Service
	toolbar    *toolbar.Toolbar
	messages   *message.Center
	history    *history.List
	generators *Generators
	logger     *slog.Logger
	base       string
	rules      []Rule
	slow       time.Duration
	saving     atomic.Bool

	mu      sync.Mutex
	current string
}

// New validates opts and fills defaults.
func New(opts Options) (*Controller, error) {
	if opts.Service == nil {
		return nil, ErrMissingService
	}
	c := &Controller{
		service:    opts.Service,
		toolbar:    opts.Toolbar,
		messages:   opts.Messages,
		history:    opts.History,
		generators: opts.Generators,
		logger:     opts.Logger,
		base:       strings.TrimRight(strings.TrimSpace(opts.BasePath), "/"),
		slow:       opts.SlowAfter,
	}
	if c.toolbar == nil {
		tb, err := toolbar.New()
		if err != nil {
			return nil, err
		}
		c.toolbar = tb
	}
	if c.messages == nil {
		c.messages = message.NewCenter()
	}
	if c.history == nil {
		c.history = history.New(history.DefaultLimit)
	}
	if c.generators == nil {
		c.generators = DefaultGenerators()
	}
	if c.logger == nil {
		c.logger = ctxlog.Discard()
	}
	if c.base == "" {
		c.base = "/configs"
	}
	if c.slow <= 0 {
		c.slow = DefaultSlowAfter
	}
	c.rules = Rules(c.base)
	return c, nil
}

// Rules returns the page routes.
func (c *Controller) Rules() []Rule { return append([]Rule(nil), c.rules...) }

// Path builds the URL of the named rule.
func (c *Controller) Path(rule string, args Args) string {
	r, ok := RuleByName(c.rules, rule)
	if !ok {
		return c.base
	}
	return r.Path(args)
}

// Messages exposes the message center.
func (c *Controller) Messages() *message.Center { return c.messages }

// Toolbar exposes the toolbar.
func (c *Controller) Toolbar() *toolbar.Toolbar { return c.toolbar }

// History returns the recently viewed configurations.
func (c *Controller) History() []history.Entry {
	return c.history.Get(history.ConfigsRecent)
}

// DefaultPage is the landing page: recent history and the default toolbar
// with delete disabled.
func (c *Controller) DefaultPage(ctx context.Context, q Query) (render.Page, error) {
	c.setCurrent("")
	bar, err := c.toolbar.Render(ctx, &toolbar.Options{
		Location: LocationToolbar,
		Buttons: []toolbar.Button{
			{Name: "delete", State: toolbar.StateDisabled},
			{Name: "new", Handler: c.openNewDialog},
		},
	})
	if err != nil {
		return render.Page{}, err
	}
	c.messages.Clear(LocationDetails)

	page := render.Page{
		Kind:    render.PageDefault,
		Title:   TitleDefault,
		Toolbar: bar,
		History: c.History(),
	}
	return c.finish(ctx, page, q)
}

// Details loads one configuration. A registered form generator for its type
// yields the editor page; anything else gets the generic JSON/XML page.
func (c *Controller) Details(ctx context.Context, id string, q Query) (render.Page, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return render.Page{}, ErrMissingID
	}
	logger := c.log(ctx)

	c.messages.Loading(LocationDetails, c.slow)
	cfg, err := c.service.Get(ctx, id)
	c.messages.Destroy(LocationDetails)
	if err != nil {
		logger.Warn("config fetch failed", "id", id, "error", err)
		if faults.Is(err, faults.KindNotFound) {
			return render.Page{}, err
		}
		return render.Page{}, faults.New(faults.KindService, err)
	}

	c.setCurrent(cfg.ID)
	c.history.Put(history.ConfigsRecent, history.Entry{
		Name:  cfg.Name,
		Value: c.Path(RuleLoadConfigs, Args{ID: cfg.ID}),
	})

	bar, err := c.toolbar.Render(ctx, &toolbar.Options{
		Location: LocationToolbar,
		Buttons: []toolbar.Button{
			{Name: "delete", Handler: c.openDeleteDialog(cfg.ID)},
			{Name: "new", Handler: c.openNewDialog},
		},
	})
	if err != nil {
		return render.Page{}, err
	}

	page := render.Page{
		Title:    cfg.Name,
		ConfigID: cfg.ID,
		History:  c.History(),
		Options: render.RenderOptions{
			HiddenFields: render.ChromeFields(cfg.ID, cfg.Name, cfg.Version),
		},
	}

	if gen, ok := c.generators.Lookup(cfg.Type); ok && !cfg.Deleted {
		form, err := gen(ctx, cfg)
		if err != nil {
			return render.Page{}, err
		}
		c.messages.Clear(LocationDetails)
		page.Kind = render.PageEditor
		page.Form = form
		page.Toolbar = bar
		page.Options.Action = c.Path(RuleLoadConfigs, Args{ID: cfg.ID}) + "/save"
		logger.Debug("config opened in editor", "id", cfg.ID, "type", cfg.Type)
		return c.finish(ctx, page, q)
	}

	body, err := displayBody(cfg)
	if err != nil {
		return render.Page{}, err
	}
	if cfg.Deleted {
		c.messages.Warn(LocationDetails, DeletedWarning)
		if err := c.toolbar.Disable(LocationToolbar, "delete"); err != nil {
			return render.Page{}, err
		}
		bar = c.toolbar.HTML(LocationToolbar)
	} else {
		c.messages.Clear(LocationDetails)
	}
	page.Kind = render.PageGeneric
	page.Toolbar = bar
	page.Generic = &render.GenericView{
		Name:    cfg.Name,
		Type:    cfg.Type,
		Format:  cfg.Format,
		Body:    body,
		Deleted: cfg.Deleted,
	}
	return c.finish(ctx, page, q)
}

// Save writes req. Only one save runs at a time; a concurrent call fails with
// ErrSaveInFlight.
func (c *Controller) Save(ctx context.Context, req SaveRequest) (Config, error) {
	if strings.TrimSpace(req.ID) == "" {
		return Config{}, ErrMissingID
	}
	if !c.saving.CompareAndSwap(false, true) {
		return Config{}, ErrSaveInFlight
	}
	defer c.saving.Store(false)

	c.messages.Text(LocationSave, message.TextSaving)
	cfg, err := c.service.Save(ctx, req)
	if err != nil {
		c.messages.Destroy(LocationSave)
		c.log(ctx).Warn("config save failed", "id", req.ID, "error", err)
		return Config{}, err
	}
	c.messages.Text(LocationSave, message.TextSaved)
	c.log(ctx).Info("config saved", "id", cfg.ID, "version", cfg.Version, "format", cfg.Format)
	return cfg, nil
}

// SaveForm submits an editor form and saves the resulting document. The
// name and version come from the form chrome.
func (c *Controller) SaveForm(ctx context.Context, id string, form *editor.Form, values map[string]string) (Config, error) {
	if form == nil {
		return Config{}, faults.Newf(faults.KindPrecondition, "configs: form is required")
	}
	submission, err := form.Submit(ctx, values)
	if err != nil {
		return Config{}, err
	}
	chrome := render.ReadChrome(values)
	name := chrome.Name
	if submission.Document != nil && strings.TrimSpace(submission.Document.Name) != "" {
		name = submission.Document.Name
	}
	return c.Save(ctx, SaveRequest{
		ID:      id,
		Name:    name,
		Data:    string(submission.JSON),
		Version: chrome.Version,
	})
}

// Create adds a configuration from the new-configuration dialog and returns
// it. The dialog is closed on success.
func (c *Controller) Create(ctx context.Context, name, data string) (Config, error) {
	if strings.TrimSpace(name) == "" {
		return Config{}, ErrMissingName
	}
	cfg, err := c.service.Create(ctx, CreateRequest{Name: name, Data: data})
	if err != nil {
		c.messages.Error(err.Error())
		return Config{}, err
	}
	c.messages.CloseDialog()
	c.log(ctx).Info("config created", "id", cfg.ID, "type", cfg.Type)
	return cfg, nil
}

// Delete removes the configuration.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	c.messages.CloseDialog()
	if err := c.service.Delete(ctx, id); err != nil {
		c.messages.Error(err.Error())
		return err
	}
	c.log(ctx).Info("config deleted", "id", id)
	return nil
}

// Search runs the listing query.
func (c *Controller) Search(ctx context.Context, q Query) (render.Listing, error) {
	listing := render.Listing{Name: q.Name, Type: q.Type, Types: append([]string(nil), Types...)}
	items, err := c.service.Search(ctx, q)
	if err != nil {
		return listing, err
	}
	for _, item := range items {
		listing.Items = append(listing.Items, render.ListingItem{
			ID:      item.ID,
			Name:    item.Name,
			Type:    item.Type,
			Deleted: item.Deleted,
		})
	}
	return listing, nil
}

// Press activates a toolbar button.
func (c *Controller) Press(ctx context.Context, name string) error {
	return c.toolbar.Press(ctx, LocationToolbar, name)
}

// Current returns the id of the configuration shown, empty on the landing
// page.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) setCurrent(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = id
}

// finish attaches the listing, messages and the open dialog. The dialog is
// shown once.
func (c *Controller) finish(ctx context.Context, page render.Page, q Query) (render.Page, error) {
	listing, err := c.Search(ctx, q)
	if err != nil {
		c.log(ctx).Warn("config search failed", "error", err)
	}
	page.Listing = listing
	for _, location := range c.messages.Locations() {
		if view, ok := c.messages.Current(location); ok {
			page.Messages = append(page.Messages, view)
		}
	}
	if dialog, ok := c.messages.Dialog(); ok {
		page.Dialog = &dialog
		c.messages.CloseDialog()
	}
	return page, nil
}

func (c *Controller) openNewDialog(context.Context) error {
	c.messages.Open(message.Dialog{
		Type:  message.DialogInput,
		Title: "Add configuration",
		Fields: []message.DialogField{
			{Type: "input", Name: "Name", ID: "name"},
			{Type: "textarea", Name: "XML", ID: "xml"},
		},
		Buttons: []string{"Ok"},
		Action:  c.base + "/new",
	})
	return nil
}

func (c *Controller) openDeleteDialog(id string) toolbar.Handler {
	return func(context.Context) error {
		c.messages.Open(message.Dialog{
			Type:    message.DialogConfirm,
			Title:   "Delete configuration?",
			Message: "Are you sure you want to permanently delete this configuration?",
			Buttons: []string{"Delete"},
			Action:  c.Path(RuleLoadConfigs, Args{ID: id}) + "/delete",
		})
		return nil
	}
}

func (c *Controller) log(ctx context.Context) *slog.Logger {
	if logger, ok := ctxlog.Lookup(ctx); ok {
		return logger
	}
	return c.logger
}

// displayBody pretty prints JSON with four spaces; XML is shown as stored.
func displayBody(cfg Config) (string, error) {
	if cfg.Format != FormatJSON || strings.TrimSpace(cfg.Body) == "" {
		return cfg.Body, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(cfg.Body), "", "    "); err != nil {
		return "", faults.New(faults.KindValidation, fmt.Errorf("configs: %s body: %w", cfg.ID, err))
	}
	return buf.String(), nil
}
