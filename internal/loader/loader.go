// Package loader reads view definition documents from files, fs.FS entries or
// URLs.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/faults"
)

// Options configures a Loader.
type Options struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
}

// Loader delegates to file, fs.FS, or HTTP strategies depending on the
// source kind.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// New constructs a Loader from pre-resolved options.
func New(options Options) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// LoadBytes fetches the raw payload for src.
func (l *Loader) LoadBytes(ctx context.Context, src document.Source) ([]byte, error) {
	if src == nil {
		return nil, faults.New(faults.KindPrecondition, errors.New("document loader: source is nil"))
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case document.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case document.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case document.SourceKindURL:
		if !l.allowHTTP {
			return nil, faults.New(faults.KindPrecondition, errors.New("document loader: http support disabled"))
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("document loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.New(faults.KindNotFound, err)
		}
		return nil, err
	}
	return data, nil
}

// Load fetches and decodes the document identified by src.
func (l *Loader) Load(ctx context.Context, src document.Source) (*document.Document, error) {
	data, err := l.LoadBytes(ctx, src)
	if err != nil {
		return nil, err
	}
	return document.Unmarshal(data)
}
