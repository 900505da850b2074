package document

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

var (
	// ErrInvalidPath is returned for paths that do not address the document.
	ErrInvalidPath = errors.New("document: invalid path")
	// ErrHole is returned when a path walks through a removed slot.
	ErrHole = errors.New("document: slot removed")
	// ErrIndexOutOfRange is returned for indices past the end of a list.
	ErrIndexOutOfRange = errors.New("document: index out of range")
)

type remover interface {
	Remove(i int) error
}

// Remove turns the slot addressed by path into a hole. Every step but the
// last is walked against the document root; the last step must be an index.
func (d *Document) Remove(path Path) error {
	parent, last, ok := path.Parent()
	if !ok || !last.IsIndex() {
		return invalid(fmt.Errorf("%w: %q does not end in an index", ErrInvalidPath, path))
	}
	node, err := d.resolve(parent)
	if err != nil {
		return err
	}
	list, ok := node.(remover)
	if !ok {
		return invalid(fmt.Errorf("%w: %q is not a list", ErrInvalidPath, parent))
	}
	if err := list.Remove(last.Index()); err != nil {
		return invalid(err)
	}
	return nil
}

// Exists reports whether path resolves to a present value.
func (d *Document) Exists(path Path) bool {
	_, err := d.resolve(path)
	return err == nil
}

// Set writes raw at the leaf addressed by path. Property leaves are parsed as
// JSON objects, period leaves as integers (blank clears them).
func (d *Document) Set(path Path, raw string) error {
	parent, last, ok := path.Parent()
	if !ok || last.IsIndex() {
		return invalid(fmt.Errorf("%w: %q does not end in a field", ErrInvalidPath, path))
	}
	node, err := d.resolve(parent)
	if err != nil {
		return err
	}
	field := last.Name()

	switch target := node.(type) {
	case *Document:
		return target.setField(field, raw)
	case *ResultModelDefinition:
		if !target.setMode(field, strings.TrimSpace(raw)) {
			return unknownField(path)
		}
		return nil
	case *CalculationSet:
		switch field {
		case FieldName:
			target.Name = raw
		case FieldDefaultProperties:
			props, err := ParseProperties(raw)
			if err != nil {
				return invalid(fmt.Errorf("document: %s: %w", path, err))
			}
			target.DefaultProperties = props
		default:
			return unknownField(path)
		}
		return nil
	case *ColumnEntry:
		if field != FieldSecurityType {
			return unknownField(path)
		}
		target.SecurityType = strings.TrimSpace(raw)
		return nil
	case *PortfolioRequirement:
		switch field {
		case FieldRequiredOutput:
			target.RequiredOutput = strings.TrimSpace(raw)
		case FieldConstraints:
			props, err := ParseProperties(raw)
			if err != nil {
				return invalid(fmt.Errorf("document: %s: %w", path, err))
			}
			target.Constraints = props
		default:
			return unknownField(path)
		}
		return nil
	default:
		return unknownField(path)
	}
}

func (d *Document) setField(field, raw string) error {
	switch field {
	case FieldName:
		d.Name = raw
		return nil
	case FieldIdentifier:
		d.Identifier = strings.TrimSpace(raw)
		return nil
	case FieldCurrency:
		d.Currency = strings.TrimSpace(raw)
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	var period *int64
	if trimmed != "" {
		value, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return invalid(fmt.Errorf("document: %s: %w", field, err))
		}
		period = &value
	}
	if !d.setPeriod(field, period) {
		return unknownField(NewPath(FieldStep(field)))
	}
	return nil
}

// ApplyValues applies a flat submission keyed by dotted paths, in key order.
// Keys addressing removed slots are skipped: their inputs left the page with
// the slot.
func (d *Document) ApplyValues(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path, err := ParsePath(key)
		if err != nil {
			return invalid(err)
		}
		if err := d.Set(path, values[key]); err != nil {
			if errors.Is(err, ErrHole) {
				continue
			}
			return err
		}
	}
	return nil
}

func (d *Document) resolve(path Path) (any, error) {
	if d == nil {
		return nil, faults.New(faults.KindPrecondition, errors.New("document: nil document"))
	}
	var node any = d
	for i, step := range path {
		next, err := child(node, step)
		if err != nil {
			return nil, invalid(fmt.Errorf("%w (at %q)", err, path[:i+1]))
		}
		node = next
	}
	return node, nil
}

func child(node any, step Step) (any, error) {
	if step.IsIndex() {
		switch list := node.(type) {
		case *List[CalculationSet]:
			return slot(list, step.Index())
		case *List[ColumnEntry]:
			return slot(list, step.Index())
		case *List[PortfolioRequirement]:
			return slot(list, step.Index())
		default:
			return nil, ErrInvalidPath
		}
	}

	switch typed := node.(type) {
	case *Document:
		switch step.Name() {
		case FieldCalculationSets:
			return &typed.CalculationSets, nil
		case FieldResultModel:
			return &typed.ResultModelDefinition, nil
		}
	case *CalculationSet:
		if step.Name() == FieldColumns {
			return &typed.Columns, nil
		}
	case *ColumnEntry:
		if step.Name() == FieldRequirements {
			return &typed.Requirements, nil
		}
	}
	return nil, ErrInvalidPath
}

func slot[T any](list *List[T], i int) (*T, error) {
	if i < 0 || i >= list.Len() {
		return nil, ErrIndexOutOfRange
	}
	value, ok := list.At(i)
	if !ok {
		return nil, ErrHole
	}
	return value, nil
}

func invalid(err error) error {
	if faults.KindOf(err) != faults.KindInternal {
		return err
	}
	return faults.New(faults.KindValidation, err)
}

func unknownField(path Path) error {
	return invalid(fmt.Errorf("%w: unknown field %q", ErrInvalidPath, path))
}
