package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-viewdef/internal/config"
	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/server"
	"github.com/goliatone/go-viewdef/pkg/store"
	"github.com/goliatone/go-viewdef/pkg/theme"
	"github.com/goliatone/go-viewdef/pkg/toolbar"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "viewdef-server:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger, err := ctxlog.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	service := configs.NewStoreService(st)

	if err := seed(ctx, service, cfg.Store.Seed); err != nil {
		return err
	}

	policy, err := toolbar.ParsePolicy(cfg.Editor.DisabledButtons)
	if err != nil {
		return err
	}
	catalog, err := theme.NewCatalog()
	if err != nil {
		return err
	}
	themeConfig, err := theme.Resolve(catalog, cfg.Theme.Name, cfg.Theme.Variant)
	if err != nil {
		return fmt.Errorf("resolve theme: %w", err)
	}

	srv, err := server.New(server.Options{
		Service:        service,
		Theme:          themeConfig,
		Logger:         logger,
		DisabledPolicy: policy,
		HistoryLimit:   cfg.History.Limit,
		SlowAfter:      cfg.Editor.SlowLoading,
		SessionTTL:     cfg.Server.SessionTTL,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func loadConfig(args []string) (config.Config, error) {
	path := config.PathFromArgs(args, os.Getenv("VIEWDEF_CONFIG"))
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("viewdef-server", flag.ContinueOnError)
	fs.String("config", path, "path to YAML configuration")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// seed loads a view definition into an empty store.
func seed(ctx context.Context, service configs.Service, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	existing, err := service.Search(ctx, configs.Query{})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	doc, err := document.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	cfg, err := service.Create(ctx, configs.CreateRequest{Name: doc.Name, Data: string(data)})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	ctxlog.FromContext(ctx).Info("seeded store", "id", cfg.ID, "name", cfg.Name)
	return nil
}
