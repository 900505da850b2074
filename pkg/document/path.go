package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one accessor of a Path: either a named field or a list index.
type Step struct {
	name    string
	index   int
	isIndex bool
}

// FieldStep returns a field accessor.
func FieldStep(name string) Step {
	return Step{name: name}
}

// IndexStep returns a list index accessor.
func IndexStep(i int) Step {
	return Step{index: i, isIndex: true}
}

// IsIndex reports whether the step addresses a list slot.
func (s Step) IsIndex() bool { return s.isIndex }

// Name returns the field name; empty for index steps.
func (s Step) Name() string { return s.name }

// Index returns the slot index; -1 for field steps.
func (s Step) Index() int {
	if !s.isIndex {
		return -1
	}
	return s.index
}

func (s Step) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.name
}

// Path addresses a value inside a Document. The same value names form fields
// (via String) and locates slots for mutation, so the two never drift apart.
type Path []Step

// NewPath builds a path from steps.
func NewPath(steps ...Step) Path {
	return append(Path(nil), steps...)
}

// Field returns a copy of p extended with a field step.
func (p Path) Field(name string) Path {
	return p.with(FieldStep(name))
}

// Index returns a copy of p extended with an index step.
func (p Path) Index(i int) Path {
	return p.with(IndexStep(i))
}

func (p Path) with(step Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

// Parent splits p into everything but the last step, and the last step.
func (p Path) Parent() (Path, Step, bool) {
	if len(p) == 0 {
		return nil, Step{}, false
	}
	n := len(p) - 1
	return p[:n:n], p[n], true
}

// Last returns the final step.
func (p Path) Last() (Step, bool) {
	if len(p) == 0 {
		return Step{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether both paths hold the same steps.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the dotted submission key.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = step.String()
	}
	return strings.Join(parts, ".")
}

// ParsePath reverses Path.String. Purely numeric segments become index steps.
func ParsePath(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segments := strings.Split(trimmed, ".")
	out := make(Path, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, raw)
		}
		if isDigits(segment) {
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, raw, err)
			}
			out = append(out, IndexStep(idx))
			continue
		}
		out = append(out, FieldStep(segment))
	}
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// SetPath addresses calculation set i.
func SetPath(set int) Path {
	return NewPath(FieldStep(FieldCalculationSets), IndexStep(set))
}

// ColumnPath addresses column entry col of calculation set set.
func ColumnPath(set, col int) Path {
	return SetPath(set).Field(FieldColumns).Index(col)
}

// RequirementPath addresses requirement req of column col in set set.
func RequirementPath(set, col, req int) Path {
	return ColumnPath(set, col).Field(FieldRequirements).Index(req)
}

// ResultModelPath addresses an output mode field.
func ResultModelPath(mode string) Path {
	return NewPath(FieldStep(FieldResultModel), FieldStep(mode))
}
