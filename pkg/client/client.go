// Package client talks to the configuration service REST API. Client
// implements configs.Service and lookups.Source, so the page controller and
// the editor selectors can run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-viewdef/components/lookups"
	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/faults"
)

// Envelope is the response body of every /api call.
type Envelope struct {
	Error   bool            `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Meta    map[string]any  `json:"meta,omitempty"`
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	// APIPath prefixes the REST routes, "/api" by default.
	APIPath string
}

// Client is a configs.Service over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	api     string
}

var (
	_ configs.Service = (*Client)(nil)
	_ lookups.Source  = (*Client)(nil)
)

// New validates the base URL.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, faults.Newf(faults.KindPrecondition, "client: base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, faults.Newf(faults.KindPrecondition, "client: invalid base url %q", raw)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	api := strings.TrimRight(strings.TrimSpace(opts.APIPath), "/")
	if api == "" {
		api = "/api"
	}
	return &Client{base: base, http: httpClient, timeout: opts.Timeout, api: api}, nil
}

func (c *Client) Get(ctx context.Context, id string) (configs.Config, error) {
	var cfg configs.Config
	err := c.do(ctx, http.MethodGet, c.path("configs", id), nil, nil, &cfg)
	return cfg, err
}

func (c *Client) Save(ctx context.Context, req configs.SaveRequest) (configs.Config, error) {
	var cfg configs.Config
	err := c.do(ctx, http.MethodPut, c.path("configs", req.ID), nil, req, &cfg)
	return cfg, err
}

func (c *Client) Create(ctx context.Context, req configs.CreateRequest) (configs.Config, error) {
	var cfg configs.Config
	err := c.do(ctx, http.MethodPost, c.path("configs"), nil, req, &cfg)
	return cfg, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.path("configs", id), nil, nil, nil)
}

func (c *Client) Search(ctx context.Context, q configs.Query) ([]configs.Config, error) {
	query := url.Values{}
	if q.Name != "" {
		query.Set("name", q.Name)
	}
	if q.Type != "" {
		query.Set("type", q.Type)
	}
	var out []configs.Config
	err := c.do(ctx, http.MethodGet, c.path("configs"), query, nil, &out)
	return out, err
}

// Lookup fetches the option list of resource, up to the server's default
// limit.
func (c *Client) Lookup(ctx context.Context, resource string) ([]lookups.Option, error) {
	var out []lookups.Option
	err := c.do(ctx, http.MethodGet, c.path("lookups", resource), nil, nil, &out)
	return out, err
}

func (c *Client) path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return c.api + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return faults.New(faults.KindInternal, fmt.Errorf("client: encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target.String(), reader)
	if err != nil {
		return faults.New(faults.KindInternal, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return faults.New(faults.KindService, fmt.Errorf("client: %s %s: %w", method, path, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return faults.New(faults.KindService, fmt.Errorf("client: read response: %w", err))
	}

	var env Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return faults.New(faults.KindService, fmt.Errorf("client: %s %s: unexpected status %s", method, path, resp.Status))
		}
	}
	if env.Error || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = "unexpected status " + resp.Status
		}
		return faults.New(kindForStatus(resp.StatusCode), errors.New(msg))
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return faults.New(faults.KindService, fmt.Errorf("client: decode data: %w", err))
	}
	return nil
}

func kindForStatus(code int) faults.Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return faults.KindValidation
	case http.StatusNotFound:
		return faults.KindNotFound
	case http.StatusConflict:
		return faults.KindConflict
	default:
		return faults.KindService
	}
}
