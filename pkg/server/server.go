// Package server exposes the configuration UI over HTTP: the REST API, the
// server-rendered pages, editing sessions (plain HTTP and websocket), the
// lookup lists, embedded assets and Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gotheme "github.com/goliatone/go-theme"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-viewdef/components/lookups"
	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/renderers/html"
	"github.com/goliatone/go-viewdef/pkg/renderers/html/components"
	"github.com/goliatone/go-viewdef/pkg/toolbar"
)

// Defaults.
const (
	DefaultCookieName = "viewdef_workspace"
	DefaultSessionTTL = 30 * time.Minute
)

// Options wires the server. Service is required.
type Options struct {
	Service    configs.Service
	Lookups    *lookups.Catalog
	Renderer   *html.Renderer
	Generators *configs.Generators
	Theme      *gotheme.RendererConfig
	Logger     *slog.Logger
	Metrics    *Metrics

	DisabledPolicy toolbar.DisabledPolicy
	HistoryLimit   int
	SlowAfter      time.Duration
	SessionTTL     time.Duration
	CookieName     string
	Now            func() time.Time
}

// Server owns the per-browser workspaces and editing sessions.
type Server struct {
	service    configs.Service
	lookups    *lookups.Catalog
	renderer   *html.Renderer
	generators *configs.Generators
	theme      *gotheme.RendererConfig
	logger     *slog.Logger
	metrics    *Metrics
	policy     toolbar.DisabledPolicy
	history    int
	slow       time.Duration
	ttl        time.Duration
	cookie     string
	now        func() time.Time
	upgrader   websocket.Upgrader

	mu         sync.Mutex
	workspaces map[string]*workspace
	sessions   map[string]*session

	router chi.Router
}

// New validates opts, fills defaults and builds the router.
func New(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, configs.ErrMissingService
	}
	s := &Server{
		service:    opts.Service,
		lookups:    opts.Lookups,
		renderer:   opts.Renderer,
		generators: opts.Generators,
		theme:      opts.Theme,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		policy:     opts.DisabledPolicy,
		history:    opts.HistoryLimit,
		slow:       opts.SlowAfter,
		ttl:        opts.SessionTTL,
		cookie:     opts.CookieName,
		now:        opts.Now,
		workspaces: make(map[string]*workspace),
		sessions:   make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if s.logger == nil {
		s.logger = ctxlog.Discard()
	}
	if s.lookups == nil {
		catalog, err := lookups.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		s.lookups = catalog
	}
	if s.renderer == nil {
		r, err := html.New(html.WithOptionSource(LookupChoices(s.lookups)))
		if err != nil {
			return nil, fmt.Errorf("server: renderer: %w", err)
		}
		s.renderer = r
	}
	if s.generators == nil {
		s.generators = configs.DefaultGenerators(editor.WithLogger(s.logger))
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.cookie == "" {
		s.cookie = DefaultCookieName
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(s.loggerMiddleware)
	router.Use(s.metrics.middleware)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/configs", http.StatusFound)
	})
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(html.AssetsFS()))))

	router.Route("/api", func(r chi.Router) {
		r.Get("/schema", s.handleSchema)
		r.Get("/configs", s.handleAPISearch)
		r.Post("/configs", s.handleAPICreate)
		r.Get("/configs/{id}", s.handleAPIGet)
		r.Put("/configs/{id}", s.handleAPISave)
		r.Delete("/configs/{id}", s.handleAPIDelete)
		if _, err := lookups.New(s.lookups, lookups.WithRoutePath("/lookups")).RegisterRoutes(r, ""); err != nil {
			s.logger.Error("lookup routes not registered", "error", err)
		}
	})

	router.Route("/configs", func(r chi.Router) {
		r.Get("/", s.handleLoad)
		r.Get("/filter", s.handleRedirect(configs.RuleLoadFilter))
		r.Get("/deleted", s.handleRedirect(configs.RuleLoadDelete))
		r.Post("/new", s.handleCreate)
		r.Post("/toolbar/{button}", s.handleToolbar)
		r.Get("/{id}", s.handleDetails)
		r.Get("/{id}/new", s.handleRedirect(configs.RuleLoadNewConfigs))
		r.Get("/{id}/edit", s.handleRedirect(configs.RuleLoadEditConfigs))
		r.Post("/{id}/save", s.handleSave)
		r.Post("/{id}/delete", s.handleDelete)
	})

	router.Route("/editor", func(r chi.Router) {
		r.Post("/{id}/sessions", s.handleOpenSession)
		r.Post("/sessions/{sid}/events", s.handleEvent)
		r.Post("/sessions/{sid}/submit", s.handleSubmit)
		r.Get("/sessions/{sid}/ws", s.handleSocket)
	})
	return router
}

func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ctx := ctxlog.WithLogger(r.Context(), logger)
		start := s.now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", s.now().Sub(start))
	})
}

func (s *Server) renderOptions() render.RenderOptions {
	return render.RenderOptions{Theme: s.theme}
}

// LookupChoices adapts a lookup source to the selector option source of the
// HTML renderer.
func LookupChoices(source lookups.Source) html.OptionSource {
	return html.OptionSourceFunc(func(ctx context.Context, resource string) ([]components.Choice, error) {
		if source == nil {
			return nil, faults.Newf(faults.KindPrecondition, "server: no lookup source")
		}
		options, err := source.Lookup(ctx, resource)
		if err != nil {
			return nil, err
		}
		out := make([]components.Choice, 0, len(options))
		for _, opt := range options {
			out = append(out, components.Choice{Value: opt.Value, Label: opt.Label})
		}
		return out, nil
	})
}
