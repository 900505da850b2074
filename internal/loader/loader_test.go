package loader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-viewdef/internal/loader"
	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
)

func TestLoaderFromFS(t *testing.T) {
	files := fstest.MapFS{"defs/equity.json": {Data: testsupport.SampleJSON()}}
	l := loader.New(loader.Options{FileSystem: files})

	doc, err := l.Load(context.Background(), document.SourceFromFS("defs/equity.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Name != "Equity Desk" || doc.CalculationSets.Len() != 3 {
		t.Fatalf("unexpected document %q with %d sets", doc.Name, doc.CalculationSets.Len())
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l := loader.New(loader.Options{FileSystem: fstest.MapFS{}})

	_, err := l.Load(context.Background(), document.SourceFromFS("missing.json"))
	if !faults.Is(err, faults.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoaderHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(testsupport.SampleJSON())
	}))
	defer srv.Close()

	disabled := loader.New(loader.Options{})
	if _, err := disabled.Load(context.Background(), document.SourceFromURL(srv.URL)); !faults.Is(err, faults.KindPrecondition) {
		t.Fatalf("expected http to be disabled, got %v", err)
	}

	l := loader.New(loader.Options{AllowHTTPFallback: true})
	doc, err := l.Load(context.Background(), document.SourceFromURL(srv.URL))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Currency != "USD" {
		t.Fatalf("unexpected currency %q", doc.Currency)
	}
}
