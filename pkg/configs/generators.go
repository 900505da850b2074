package configs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/document/schema"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/faults"
)

// Generator builds an editing form for a configuration.
type Generator func(ctx context.Context, cfg Config) (*editor.Form, error)

// Generators maps lower-cased configuration types to form generators.
type Generators struct {
	mu    sync.RWMutex
	items map[string]Generator
}

func NewGenerators() *Generators {
	return &Generators{items: make(map[string]Generator)}
}

// DefaultGenerators registers the view definition form builder.
func DefaultGenerators(opts ...editor.Option) *Generators {
	g := NewGenerators()
	_ = g.Register(TypeViewDefinition, ViewDefinitionGenerator(opts...))
	return g
}

func (g *Generators) Register(typ string, gen Generator) error {
	key := strings.ToLower(strings.TrimSpace(typ))
	if key == "" {
		return fmt.Errorf("configs: generator type required")
	}
	if gen == nil {
		return fmt.Errorf("configs: generator for %q is nil", typ)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items[key] = gen
	return nil
}

// Lookup finds the generator for typ, case-insensitively.
func (g *Generators) Lookup(typ string) (Generator, bool) {
	if g == nil {
		return nil, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	gen, ok := g.items[strings.ToLower(strings.TrimSpace(typ))]
	return gen, ok
}

// ViewDefinitionGenerator decodes the JSON body and builds the view
// definition editor, validating submissions against the document schema.
func ViewDefinitionGenerator(opts ...editor.Option) Generator {
	return func(ctx context.Context, cfg Config) (*editor.Form, error) {
		if cfg.Format != FormatJSON {
			return nil, faults.Newf(faults.KindValidation, "configs: %s %s is not JSON", cfg.Type, cfg.ID)
		}
		doc, err := document.Unmarshal([]byte(cfg.Body))
		if err != nil {
			return nil, err
		}
		options := append([]editor.Option{editor.WithValidator(schema.Validate)}, opts...)
		return editor.Build(doc, options...)
	}
}
