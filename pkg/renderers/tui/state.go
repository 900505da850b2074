package tui

import (
	"maps"
	"sort"
)

// State tracks the values entered during a session and the validation
// messages attached to fields, both keyed by submission name. Values only
// holds edits; Merge overlays them on the form's current values.
type State struct {
	values map[string]string
	errors map[string][]string
}

// NewState seeds the state with errors from a previous submission.
func NewState(errs map[string][]string) *State {
	return &State{
		values: make(map[string]string),
		errors: cloneErrors(errs),
	}
}

// Value returns the edited value of name, or fallback when it was not
// edited.
func (s *State) Value(name, fallback string) string {
	if s == nil {
		return fallback
	}
	if v, ok := s.values[name]; ok {
		return v
	}
	return fallback
}

// Set records an edit and clears the errors of name.
func (s *State) Set(name, value string) {
	s.values[name] = value
	delete(s.errors, name)
}

// Edits returns a copy of the edited values.
func (s *State) Edits() map[string]string {
	return maps.Clone(s.values)
}

// Merge overlays the edits on base and returns the result.
func (s *State) Merge(base map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(s.values))
	maps.Copy(out, base)
	maps.Copy(out, s.values)
	return out
}

// ErrorsFor returns the errors attached to name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// SetErrors replaces the field errors.
func (s *State) SetErrors(errs map[string][]string) {
	s.errors = cloneErrors(errs)
}

// ErrorNames lists the fields carrying errors, sorted.
func (s *State) ErrorNames() []string {
	out := make([]string, 0, len(s.errors))
	for name := range s.errors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}
