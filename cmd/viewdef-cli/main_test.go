package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/renderers/tui"
	"github.com/goliatone/go-viewdef/pkg/server"
	"github.com/goliatone/go-viewdef/pkg/store"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
)

// scriptDriver picks menu entries by label prefix and answers inputs in
// order.
type scriptDriver struct {
	picks  []string
	inputs []string
}

func (d *scriptDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	if len(d.picks) == 0 {
		return 0, tui.ErrAborted
	}
	want := d.picks[0]
	d.picks = d.picks[1:]
	for i, option := range cfg.Options {
		if strings.HasPrefix(option, want) {
			return i, nil
		}
	}
	return 0, errors.New("no option " + want)
}

func (d *scriptDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", tui.ErrAborted
	}
	value := d.inputs[0]
	d.inputs = d.inputs[1:]
	return value, nil
}

func (d *scriptDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) { return true, nil }
func (d *scriptDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}
func (d *scriptDriver) Info(context.Context, string) error { return nil }

func newService(t *testing.T) (*httptest.Server, configs.Config) {
	t.Helper()

	service := configs.NewStoreService(store.NewMemory())
	cfg, err := service.Create(testsupport.Context(), configs.CreateRequest{Name: "Equity View", Data: string(testsupport.SampleJSON())})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv, err := server.New(server.Options{Service: service, Logger: ctxlog.Discard()})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, cfg
}

func TestListPrintsConfigurations(t *testing.T) {
	ts, cfg := newService(t)

	var out, errOut bytes.Buffer
	if err := run(testsupport.Context(), []string{"list", "-service", ts.URL}, &out, &errOut, nil); err != nil {
		t.Fatalf("list: %v\n%s", err, errOut.String())
	}
	if !strings.Contains(out.String(), cfg.ID) || !strings.Contains(out.String(), "Equity View") {
		t.Fatalf("unexpected listing:\n%s", out.String())
	}
}

func TestEditSavesThroughService(t *testing.T) {
	ts, cfg := newService(t)
	driver := &scriptDriver{picks: []string{"Name:", "Submit"}, inputs: []string{"Renamed View"}}

	var out, errOut bytes.Buffer
	err := run(testsupport.Context(), []string{"edit", "-service", ts.URL, "-id", cfg.ID, "-format", "json"}, &out, &errOut, driver)
	if err != nil {
		t.Fatalf("edit: %v\n%s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "at version 2") {
		t.Fatalf("expected saved version, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), `"name":"Renamed View"`) {
		t.Fatalf("expected submitted body, got:\n%s", out.String())
	}
}

func TestEditAbortLeavesServiceUntouched(t *testing.T) {
	ts, cfg := newService(t)
	driver := &scriptDriver{picks: []string{"Abort"}}

	err := run(testsupport.Context(), []string{"edit", "-service", ts.URL, "-id", cfg.ID}, &bytes.Buffer{}, &bytes.Buffer{}, driver)
	if !errors.Is(err, tui.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRenderWritesHTML(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "viewdef.json")
	if err := os.WriteFile(source, testsupport.SampleJSON(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	output := filepath.Join(dir, "out.html")

	var out bytes.Buffer
	if err := run(testsupport.Context(), []string{"render", "-source", source, "-output", output}, &out, &bytes.Buffer{}, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if testsupport.MustQuery(t, string(data)).Find("form.og-form").Length() != 1 {
		t.Fatalf("expected editor form in output")
	}
}

func TestRunRejectsUnknownInput(t *testing.T) {
	var errOut bytes.Buffer
	if err := run(testsupport.Context(), nil, &bytes.Buffer{}, &errOut, nil); err == nil {
		t.Fatalf("expected missing command error")
	}
	if err := run(testsupport.Context(), []string{"frobnicate"}, &bytes.Buffer{}, &errOut, nil); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if err := run(testsupport.Context(), []string{"render"}, &bytes.Buffer{}, &errOut, nil); err == nil {
		t.Fatalf("expected missing source error")
	}
}
