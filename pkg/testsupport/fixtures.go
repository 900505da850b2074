package testsupport

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-viewdef/pkg/document"
)

//go:embed testdata/viewdef.json
var sampleDocument []byte

// SampleJSON returns the raw sample view definition: three calculation sets
// ("Default" with two columns, "Bump" with none, "Stress" with one empty
// column).
func SampleJSON() []byte {
	return append([]byte(nil), sampleDocument...)
}

// SampleDocument decodes a fresh copy of the sample view definition.
func SampleDocument(t *testing.T) *document.Document {
	t.Helper()

	doc, err := document.Unmarshal(sampleDocument)
	if err != nil {
		t.Fatalf("decode sample document: %v", err)
	}
	return doc
}

// MustQuery parses an HTML fragment for selector based assertions.
func MustQuery(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
