package lookups

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

// Source resolves the full option list for a resource.
type Source interface {
	Lookup(ctx context.Context, resource string) ([]Option, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, resource string) ([]Option, error)

func (fn SourceFunc) Lookup(ctx context.Context, resource string) ([]Option, error) {
	return fn(ctx, resource)
}

// Catalog maps resource names to static lists or dynamic sources. Static
// lists take precedence over sources registered under the same name.
type Catalog struct {
	mu      sync.RWMutex
	static  map[string][]Option
	sources map[string]Source
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		static:  map[string][]Option{},
		sources: map[string]Source{},
	}
}

// DefaultCatalog returns a catalog preloaded with the embedded lists.
func DefaultCatalog() (*Catalog, error) {
	c := NewCatalog()
	for _, name := range []string{ResourcePortfolios, ResourceSecurities, ResourceRequirements} {
		options, ok, err := BuiltinOptions(name)
		if err != nil {
			return nil, err
		}
		if ok {
			c.Set(name, options)
		}
	}
	return c, nil
}

// Set replaces the static list for resource.
func (c *Catalog) Set(resource string, options []Option) {
	resource = normalizeResource(resource)
	if c == nil || resource == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.static[resource] = append([]Option(nil), options...)
	delete(c.sources, resource)
}

// Register installs a dynamic source for resource and drops any static list.
func (c *Catalog) Register(resource string, source Source) error {
	resource = normalizeResource(resource)
	if c == nil {
		return fmt.Errorf("lookups: nil catalog")
	}
	if resource == "" {
		return fmt.Errorf("lookups: resource name required")
	}
	if source == nil {
		return fmt.Errorf("lookups: source for %q is nil", resource)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[resource] = source
	delete(c.static, resource)
	return nil
}

// Resources lists the registered names in sorted order.
func (c *Catalog) Resources() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.static)+len(c.sources))
	for name := range c.static {
		names = append(names, name)
	}
	for name := range c.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup implements Source.
func (c *Catalog) Lookup(ctx context.Context, resource string) ([]Option, error) {
	resource = normalizeResource(resource)
	if c == nil {
		return nil, faults.New(faults.KindPrecondition, fmt.Errorf("lookups: nil catalog"))
	}

	c.mu.RLock()
	options, isStatic := c.static[resource]
	source := c.sources[resource]
	c.mu.RUnlock()

	if isStatic {
		return append([]Option(nil), options...), nil
	}
	if source == nil {
		return nil, faults.New(faults.KindNotFound, fmt.Errorf("lookups: unknown resource %q", resource))
	}
	out, err := source.Lookup(ctx, resource)
	if err != nil {
		var kinded *faults.Error
		if errors.As(err, &kinded) {
			return nil, err
		}
		return nil, faults.New(faults.KindService, fmt.Errorf("lookups: %s: %w", resource, err))
	}
	return out, nil
}

func normalizeResource(resource string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(resource), "/"))
}
