package editor

import (
	"fmt"
	"slices"
)

// Tabs tracks one tab per calculation set, keyed by the set's slot index, and
// which one is active.
type Tabs struct {
	order  []int
	labels map[int]string
	active int
}

// NewTabs returns an empty tab strip.
func NewTabs() *Tabs {
	return &Tabs{labels: make(map[int]string), active: -1}
}

// Add appends a tab for set. The first tab added becomes active.
func (t *Tabs) Add(set int, label string) {
	if _, exists := t.labels[set]; exists {
		t.labels[set] = label
		return
	}
	t.order = append(t.order, set)
	t.labels[set] = label
	if t.active < 0 {
		t.active = set
	}
}

// Active returns the active set.
func (t *Tabs) Active() (int, bool) {
	return t.active, t.active >= 0
}

// Len returns the number of tabs.
func (t *Tabs) Len() int { return len(t.order) }

// Order returns the sets in tab order.
func (t *Tabs) Order() []int { return slices.Clone(t.order) }

// Label returns the label of set's tab.
func (t *Tabs) Label(set int) (string, bool) {
	label, ok := t.labels[set]
	return label, ok
}

// Labels returns labels in tab order.
func (t *Tabs) Labels() []string {
	out := make([]string, 0, len(t.order))
	for _, set := range t.order {
		out = append(out, t.labels[set])
	}
	return out
}

// Activate makes set active. It reports false without changing anything when
// set is already active.
func (t *Tabs) Activate(set int) (bool, error) {
	if _, ok := t.labels[set]; !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownTab, set)
	}
	if t.active == set {
		return false, nil
	}
	t.active = set
	return true, nil
}

// Transition describes the effect of removing a tab.
type Transition struct {
	Removed   int
	WasActive bool
	// Activated is the set that became active, or -1.
	Activated int
}

// Remove drops set's tab. Removing the active tab activates the previous tab,
// or the next one when the removed tab was first; removing the only tab
// leaves none active. Removing an inactive tab keeps the current activation.
func (t *Tabs) Remove(set int) (Transition, error) {
	pos := slices.Index(t.order, set)
	if pos < 0 {
		return Transition{}, fmt.Errorf("%w: %d", ErrUnknownTab, set)
	}
	tr := Transition{Removed: set, WasActive: t.active == set, Activated: -1}

	t.order = slices.Delete(t.order, pos, pos+1)
	delete(t.labels, set)
	if !tr.WasActive {
		return tr, nil
	}

	switch {
	case pos > 0:
		t.active = t.order[pos-1]
	case len(t.order) > 0:
		t.active = t.order[0]
	default:
		t.active = -1
	}
	tr.Activated = t.active
	return tr, nil
}

// Rename sets the label of the active tab and returns its set.
func (t *Tabs) Rename(label string) (int, bool) {
	if t.active < 0 {
		return -1, false
	}
	t.labels[t.active] = label
	return t.active, true
}
