package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/faults"
)

// Transformer mutates a loaded document before it is validated and built
// into an editor form.
type Transformer interface {
	Transform(ctx context.Context, doc *document.Document) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, doc *document.Document) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, doc *document.Document) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, doc)
}

// PresetTransformer applies declarative edits loaded from a YAML (or JSON)
// preset. Removals run first so value keys address the surviving slots:
//
//	remove:
//	  - calculationConfiguration.1
//	values:
//	  currency: EUR
//	  calculationConfiguration.0.name: Base
type PresetTransformer struct {
	preset preset
}

type preset struct {
	Remove []string          `yaml:"remove"`
	Values map[string]string `yaml:"values"`
}

// NewPresetTransformer parses a preset document.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, faults.New(faults.KindPrecondition, errors.New("preset transformer: document is empty"))
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p preset
	if err := dec.Decode(&p); err != nil {
		return nil, faults.New(faults.KindValidation, fmt.Errorf("preset transformer: parse document: %w", err))
	}
	for _, raw := range p.Remove {
		if _, err := document.ParsePath(raw); err != nil {
			return nil, fmt.Errorf("preset transformer: remove %q: %w", raw, err)
		}
	}
	return &PresetTransformer{preset: p}, nil
}

// NewPresetTransformerFromFS loads a preset from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, faults.New(faults.KindPrecondition, errors.New("preset transformer: filesystem is nil"))
	}
	if strings.TrimSpace(path) == "" {
		return nil, faults.New(faults.KindPrecondition, errors.New("preset transformer: path is required"))
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform removes the listed items then applies the values.
func (t *PresetTransformer) Transform(ctx context.Context, doc *document.Document) error {
	if doc == nil {
		return faults.New(faults.KindPrecondition, errors.New("preset transformer: document is nil"))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, raw := range t.preset.Remove {
		path, err := document.ParsePath(raw)
		if err != nil {
			return err
		}
		if err := doc.Remove(path); err != nil {
			return fmt.Errorf("preset transformer: remove %s: %w", raw, err)
		}
	}
	if len(t.preset.Values) == 0 {
		return nil
	}
	if err := doc.ApplyValues(t.preset.Values); err != nil {
		return fmt.Errorf("preset transformer: apply values: %w", err)
	}
	return nil
}
