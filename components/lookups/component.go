package lookups

import "net/http"

// Component bundles a catalog with its handler options.
type Component struct {
	catalog *Catalog
	opts    Options
}

// New constructs a component around catalog. A nil catalog falls back to the
// embedded defaults, or an empty catalog when those cannot be loaded.
func New(catalog *Catalog, fns ...OptionFn) *Component {
	if catalog == nil {
		loaded, err := DefaultCatalog()
		if err != nil {
			loaded = NewCatalog()
		}
		catalog = loaded
	}
	return &Component{catalog: catalog, opts: NewOptions(fns...)}
}

func (c *Component) Catalog() *Catalog {
	if c == nil {
		return nil
	}
	return c.catalog
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

func (c *Component) Handler() http.Handler {
	if c == nil {
		return HandlerWithOptions(nil, DefaultOptions())
	}
	return HandlerWithOptions(c.catalog, c.opts)
}

func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath, nil)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.catalog, c.opts)
}
