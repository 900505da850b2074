package lookups

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux and chi routers.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full route pattern, including the resource wildcard,
// under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath) + "/{" + ResourceParam + "}"
}

// RegisterRoutes registers a handler for source under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, source Source, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, source, NewOptions(fns...))
}

func RegisterRoutesWithOptions(mux Mux, basePath string, source Source, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("lookups: missing mux")
	}
	if source == nil {
		return "", fmt.Errorf("lookups: missing source")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := mountPath(basePath, opts.RoutePath) + "/{" + ResourceParam + "}"
	mux.Handle(pattern, HandlerWithOptions(source, opts))
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimRight(strings.TrimSpace(routePath), "/")

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
