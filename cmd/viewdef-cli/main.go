package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-viewdef/internal/config"
	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/internal/loader"
	"github.com/goliatone/go-viewdef/pkg/client"
	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/orchestrator"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/renderers/html"
	"github.com/goliatone/go-viewdef/pkg/renderers/tui"
)

const usage = `usage: viewdef-cli <command> [flags]

commands:
  list    list configurations held by the service
  edit    edit a view definition held by the service
  render  render a view definition file or URL (html or tui)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "viewdef-cli:", err)
		os.Exit(1)
	}
}

// run dispatches a command. driver overrides the survey prompts.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver tui.PromptDriver) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]

	fs := flag.NewFlagSet("viewdef-cli "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.Load(config.PathFromArgs(rest, os.Getenv("VIEWDEF_CONFIG")))
	if err != nil {
		return err
	}
	fs.String("config", "", "path to YAML configuration")
	fs.StringVar(&cfg.Service.BaseURL, "service", cfg.Service.BaseURL, "configuration service base URL")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level (debug|info|warn|error)")

	var exec func(ctx context.Context) error
	switch cmd {
	case "list":
		name := fs.String("name", "", "name filter, * matches any run")
		kind := fs.String("type", "", "configuration type")
		exec = func(ctx context.Context) error {
			svc, err := newClient(cfg)
			if err != nil {
				return err
			}
			return list(ctx, svc, configs.Query{Name: *name, Type: *kind}, stdout)
		}
	case "edit":
		id := fs.String("id", "", "configuration id")
		format := fs.String("format", "pretty", "echo format after saving (json|form|pretty)")
		exec = func(ctx context.Context) error {
			svc, err := newClient(cfg)
			if err != nil {
				return err
			}
			return edit(ctx, svc, *id, *format, driver, stdout)
		}
	case "render":
		source := fs.String("source", "", "view definition path or URL")
		rendererName := fs.String("renderer", "html", "renderer (html|tui)")
		format := fs.String("format", "json", "tui output format (json|form|pretty)")
		preset := fs.String("preset", "", "YAML preset applied before rendering")
		output := fs.String("output", "", "output file (stdout if empty)")
		exec = func(ctx context.Context) error {
			return renderSource(ctx, renderArgs{
				source:   *source,
				renderer: *rendererName,
				format:   *format,
				preset:   *preset,
				output:   *output,
				driver:   driver,
				timeout:  cfg.Service.Timeout,
			}, stdout)
		}
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err := fs.Parse(rest); err != nil {
		return err
	}

	logger, err := ctxlog.New(stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	return exec(ctxlog.WithLogger(ctx, logger))
}

func newClient(cfg config.Config) (*client.Client, error) {
	return client.New(client.Options{BaseURL: cfg.Service.BaseURL, Timeout: cfg.Service.Timeout})
}

func list(ctx context.Context, svc configs.Service, q configs.Query, out io.Writer) error {
	items, err := svc.Search(ctx, q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tVERSION")
	for _, item := range items {
		name := item.Name
		if item.Deleted {
			name += " (deleted)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", item.ID, name, item.Type, item.Version)
	}
	return w.Flush()
}

// edit walks a stored view definition through the terminal editor and saves
// the result with the version it was read at.
func edit(ctx context.Context, svc *client.Client, id, format string, driver tui.PromptDriver, out io.Writer) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("edit: -id is required")
	}
	echo, ok := tui.ParseOutputFormat(format)
	if !ok {
		return fmt.Errorf("edit: unknown format %q", format)
	}
	cfg, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if cfg.Type != configs.TypeViewDefinition || cfg.Format != configs.FormatJSON {
		return fmt.Errorf("edit: %s is a %s %s configuration; only JSON view definitions open in the editor", id, cfg.Format, cfg.Type)
	}
	doc, err := document.Unmarshal([]byte(cfg.Body))
	if err != nil {
		return err
	}

	renderer, err := tui.New(tui.WithPromptDriver(driverOr(driver)), tui.WithLookups(svc), tui.WithLogger(ctxlog.FromContext(ctx)))
	if err != nil {
		return err
	}
	orch := orchestrator.New(orchestrator.WithRegistry(registryOf(renderer)))
	body, err := orch.Generate(ctx, orchestrator.Request{Document: doc})
	if err != nil {
		return err
	}

	saved, err := svc.Save(ctx, configs.SaveRequest{ID: cfg.ID, Name: doc.Name, Data: string(body), Version: cfg.Version})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s (%s) at version %d\n", saved.Name, saved.ID, saved.Version)
	if echo == tui.OutputFormatPrettyText {
		pretty, err := document.MarshalIndent(doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(pretty))
		return err
	}
	_, err = fmt.Fprintln(out, string(body))
	return err
}

type renderArgs struct {
	source   string
	renderer string
	format   string
	preset   string
	output   string
	driver   tui.PromptDriver
	timeout  time.Duration
}

func renderSource(ctx context.Context, args renderArgs, stdout io.Writer) error {
	src, err := parseSource(args.source)
	if err != nil {
		return err
	}
	format, ok := tui.ParseOutputFormat(args.format)
	if !ok {
		return fmt.Errorf("render: unknown format %q", args.format)
	}

	htmlRenderer, err := html.New()
	if err != nil {
		return err
	}
	tuiRenderer, err := tui.New(tui.WithPromptDriver(driverOr(args.driver)), tui.WithOutputFormat(format), tui.WithLogger(ctxlog.FromContext(ctx)))
	if err != nil {
		return err
	}
	registry := registryOf(htmlRenderer, tuiRenderer)

	options := []orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithLoader(loader.New(loader.Options{AllowHTTPFallback: true, RequestTimeout: args.timeout})),
	}
	if args.preset != "" {
		data, err := os.ReadFile(args.preset)
		if err != nil {
			return fmt.Errorf("render: preset: %w", err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithTransformers(preset))
	}

	out, err := orchestrator.New(options...).Generate(ctx, orchestrator.Request{Source: src, Renderer: args.renderer})
	if err != nil {
		return err
	}
	if args.output == "" {
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	}
	if err := os.WriteFile(args.output, out, 0o644); err != nil {
		return fmt.Errorf("render: write output: %w", err)
	}
	fmt.Fprintf(stdout, "written to %s\n", args.output)
	return nil
}

func parseSource(raw string) (document.Source, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil, errors.New("render: -source is required")
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return document.SourceFromURL(path), nil
	}
	return document.SourceFromFile(path), nil
}

func driverOr(driver tui.PromptDriver) tui.PromptDriver {
	if driver != nil {
		return driver
	}
	return tui.NewSurveyDriver(os.Stdout)
}

func registryOf(renderers ...render.Renderer) *render.Registry {
	registry := render.NewRegistry()
	for _, r := range renderers {
		registry.MustRegister(r)
	}
	return registry
}
