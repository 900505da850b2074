package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-viewdef/components/lookups"
	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/render"
)

// Menu entries shared by every level.
const (
	labelBack   = "Back"
	labelSubmit = "Submit"
	labelAbort  = "Abort"
)

// Renderer implements render.Renderer for terminal-driven sessions. Render
// walks the editor form through menus, applies edits and structural actions
// through the form, and returns the submitted document.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	lookups      lookups.Source
	logger       *slog.Logger
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output,
// embedded lookup lists).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: OutputFormatJSON,
		logger:       ctxlog.Discard(),
		theme:        Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.lookups == nil {
		catalog, err := lookups.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("tui: lookups: %w", err)
		}
		r.lookups = catalog
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs the prompt loop until the form is submitted or the session is
// aborted. Errors in options are shown against their fields; a submission
// rejected by the form's validator is reported the same way and the loop
// continues.
func (r *Renderer) Render(ctx context.Context, form *editor.Form, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrMissingForm
	}
	if r.driver == nil {
		return nil, ErrMissingDriver
	}

	s := &session{
		r:       r,
		form:    form,
		state:   NewState(options.Errors),
		choices: make(map[string][]lookups.Option),
		logger:  r.logger,
	}
	if logger, ok := ctxlog.Lookup(ctx); ok {
		s.logger = logger
	}
	for _, msg := range options.FormErrors {
		s.fail(ctx, msg)
	}
	return s.run(ctx)
}

// session is the state of one Render call.
type session struct {
	r       *Renderer
	form    *editor.Form
	state   *State
	choices map[string][]lookups.Option
	logger  *slog.Logger
}

type entry struct {
	label string
	run   func(ctx context.Context) (done bool, err error)
}

// menu shows entries plus Back and runs the choice until Back is picked or
// an entry reports done. Entries are rebuilt on every pass.
func (s *session) menu(ctx context.Context, title string, build func() []entry) error {
	for {
		entries := build()
		if entries == nil {
			return nil
		}
		labels := make([]string, 0, len(entries)+1)
		for _, e := range entries {
			labels = append(labels, e.label)
		}
		labels = append(labels, labelBack)

		idx, err := s.r.driver.Select(ctx, SelectConfig{Message: title, Options: labels})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(entries) {
			return nil
		}
		done, err := entries[idx].run(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (s *session) run(ctx context.Context) ([]byte, error) {
	for {
		doc := s.form.Document()
		name := s.state.Value(document.FieldName, doc.Name)
		options := []string{
			"Name: " + name,
			s.blockTitle(editor.IDIdentity, "Identity"),
			s.blockTitle(editor.IDResultModel, "Result Model Definition"),
			s.blockTitle(editor.IDExecution, "Execution Parameters"),
			fmt.Sprintf("Calculation sets (%d)", s.form.Tabs().Len()),
			labelSubmit,
			labelAbort,
		}
		idx, err := s.r.driver.Select(ctx, SelectConfig{Message: doc.Name, Options: options})
		if err != nil {
			return nil, err
		}

		switch idx {
		case 0:
			value, err := s.r.driver.Input(ctx, InputConfig{
				Message:   "Name",
				Default:   name,
				Help:      s.help(document.FieldName),
				Validator: required,
			})
			if err != nil {
				return nil, err
			}
			s.state.Set(document.FieldName, strings.TrimSpace(value))
		case 1, 2, 3:
			id := []string{editor.IDIdentity, editor.IDResultModel, editor.IDExecution}[idx-1]
			if b, ok := s.form.Block(id); ok {
				if err := s.editBlock(ctx, b, nil); err != nil {
					return nil, err
				}
			}
		case 4:
			if err := s.setsMenu(ctx); err != nil {
				return nil, err
			}
		case 5:
			out, ok, err := s.submit(ctx)
			if err != nil {
				return nil, err
			}
			if ok {
				return out, nil
			}
		default:
			return nil, ErrAborted
		}
	}
}

// editBlock lists the fields of b followed by extra entries.
func (s *session) editBlock(ctx context.Context, b *editor.Block, extra func() []entry) error {
	title := b.Title
	if title == "" {
		title = string(b.Kind)
	}
	return s.menu(ctx, title, func() []entry {
		if !s.mounted(b) {
			return nil
		}
		var entries []entry
		for _, f := range b.Fields {
			entries = append(entries, entry{
				label: s.fieldLabel(f),
				run: func(ctx context.Context) (bool, error) {
					return false, s.promptField(ctx, f)
				},
			})
		}
		if extra != nil {
			entries = append(entries, extra()...)
		}
		return entries
	})
}

func (s *session) setsMenu(ctx context.Context) error {
	return s.menu(ctx, "Calculation sets", func() []entry {
		tabs := s.form.Tabs()
		active, _ := tabs.Active()
		var entries []entry
		for _, set := range tabs.Order() {
			label, _ := tabs.Label(set)
			if set == active {
				label = "* " + label
			}
			entries = append(entries, entry{
				label: label,
				run: func(ctx context.Context) (bool, error) {
					return false, s.setMenu(ctx, set)
				},
			})
		}
		entries = append(entries, entry{
			label: "Add calculation set",
			run: func(ctx context.Context) (bool, error) {
				name, err := s.r.driver.Input(ctx, InputConfig{Message: "Set name", Validator: required})
				if err != nil {
					return false, err
				}
				return false, s.dispatch(ctx, editor.IDTabs, editor.ActionAddSet, strings.TrimSpace(name))
			},
		})
		return entries
	})
}

func (s *session) setMenu(ctx context.Context, set int) error {
	if active, ok := s.form.Tabs().Active(); !ok || active != set {
		tab, ok := s.form.TabBlock(set)
		if !ok {
			return nil
		}
		if err := s.dispatch(ctx, tab.ID, editor.ActionActivate, ""); err != nil {
			return nil
		}
	}
	holder, ok := s.form.SetBlock(set)
	if !ok {
		return nil
	}
	header := childOfKind(holder, editor.KindSetHeader)
	if header == nil {
		return nil
	}
	label, _ := s.form.Tabs().Label(set)

	return s.menu(ctx, label, func() []entry {
		if !s.mounted(holder) {
			return nil
		}
		var entries []entry
		for _, f := range header.Fields {
			entries = append(entries, entry{
				label: s.fieldLabel(f),
				run: func(ctx context.Context) (bool, error) {
					if last, ok := f.Path.Last(); ok && last.Name() == document.FieldName {
						return false, s.rename(ctx, header, f)
					}
					return false, s.promptField(ctx, f)
				},
			})
		}
		for i, col := range childrenOfKind(holder, editor.KindColumn) {
			security, _ := col.Field(document.FieldSecurityType)
			entries = append(entries, entry{
				label: fmt.Sprintf("Column %d: %s", i+1, orNone(s.state.Value(security.Name, security.Value))),
				run: func(ctx context.Context) (bool, error) {
					return false, s.columnMenu(ctx, col)
				},
			})
		}
		entries = append(entries,
			entry{
				label: "Add column",
				run: func(ctx context.Context) (bool, error) {
					return false, s.dispatch(ctx, holder.ID, editor.ActionAddColumn, "")
				},
			},
			entry{
				label: "Remove set",
				run: func(ctx context.Context) (bool, error) {
					ok, err := s.r.driver.Confirm(ctx, ConfirmConfig{Message: "Remove " + label + "?"})
					if err != nil || !ok {
						return false, err
					}
					return true, s.dispatch(ctx, holder.ID, editor.ActionRemoveSet, "")
				},
			},
		)
		return entries
	})
}

func (s *session) columnMenu(ctx context.Context, col *editor.Block) error {
	return s.editBlock(ctx, col, func() []entry {
		var entries []entry
		if list := childOfKind(col, editor.KindRequirements); list != nil {
			for _, req := range childrenOfKind(list, editor.KindRequirement) {
				output, _ := req.Field(document.FieldRequiredOutput)
				entries = append(entries, entry{
					label: req.Title + ": " + orNone(s.state.Value(output.Name, output.Value)),
					run: func(ctx context.Context) (bool, error) {
						return false, s.requirementMenu(ctx, req)
					},
				})
			}
		}
		entries = append(entries,
			entry{
				label: "Add requirement",
				run: func(ctx context.Context) (bool, error) {
					return false, s.dispatch(ctx, col.ID, editor.ActionAddRequirement, "")
				},
			},
			entry{
				label: "Remove column",
				run: func(ctx context.Context) (bool, error) {
					return true, s.dispatch(ctx, col.ID, editor.ActionRemoveColumn, "")
				},
			},
		)
		return entries
	})
}

func (s *session) requirementMenu(ctx context.Context, req *editor.Block) error {
	return s.editBlock(ctx, req, func() []entry {
		return []entry{{
			label: "Remove requirement",
			run: func(ctx context.Context) (bool, error) {
				return true, s.dispatch(ctx, req.ID, editor.ActionRemoveRequirement, "")
			},
		}}
	})
}

func (s *session) rename(ctx context.Context, header *editor.Block, f editor.Field) error {
	value, err := s.r.driver.Input(ctx, InputConfig{
		Message:   f.Label,
		Default:   s.state.Value(f.Name, f.Value),
		Help:      s.help(f.Name),
		Validator: required,
	})
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	s.state.Set(f.Name, value)
	return s.dispatch(ctx, header.ID, editor.ActionRename, value)
}

// promptField asks for one field with the control matching its kind.
func (s *session) promptField(ctx context.Context, f editor.Field) error {
	current := s.state.Value(f.Name, f.Value)
	help := s.help(f.Name)

	var (
		value string
		err   error
	)
	switch f.Kind {
	case editor.FieldSelect:
		value, err = s.pick(ctx, f.Label, help, current, f.Options, f.Options)
	case editor.FieldLookup:
		options, lerr := s.lookup(ctx, f.Resource)
		if lerr != nil || len(options) == 0 {
			if lerr != nil {
				s.fail(ctx, fmt.Sprintf("%s choices unavailable: %v", f.Label, lerr))
			}
			value, err = s.r.driver.Input(ctx, InputConfig{Message: f.Label, Default: current, Help: help})
			break
		}
		values := make([]string, 0, len(options)+1)
		labels := make([]string, 0, len(options)+1)
		if current == "" || !slices.ContainsFunc(options, func(o lookups.Option) bool { return o.Value == current }) {
			values = append(values, current)
			labels = append(labels, orNone(current))
		}
		for _, o := range options {
			values = append(values, o.Value)
			label := o.Label
			if label != o.Value {
				label = fmt.Sprintf("%s (%s)", o.Label, o.Value)
			}
			labels = append(labels, label)
		}
		value, err = s.pick(ctx, f.Label, help, current, values, labels)
	case editor.FieldNumber:
		value, err = s.r.driver.Input(ctx, InputConfig{
			Message:   f.Label,
			Default:   current,
			Help:      help,
			Validator: optionalInt,
		})
		value = strings.TrimSpace(value)
	case editor.FieldProperties:
		value, err = s.r.driver.TextArea(ctx, TextAreaConfig{Message: f.Label, Default: current, Help: help})
		if err == nil {
			if _, perr := document.ParseProperties(value); perr != nil {
				s.fail(ctx, fmt.Sprintf("%s: %v", f.Label, perr))
				return nil
			}
		}
	default:
		value, err = s.r.driver.Input(ctx, InputConfig{Message: f.Label, Default: current, Help: help})
	}
	if err != nil {
		return err
	}
	s.state.Set(f.Name, value)
	return nil
}

func (s *session) pick(ctx context.Context, message, help, current string, values, labels []string) (string, error) {
	display := make([]string, len(labels))
	for i, l := range labels {
		display[i] = orNone(l)
	}
	idx, err := s.r.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      display,
		DefaultIndex: slices.Index(values, current),
		Help:         help,
		PageSize:     15,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(values) {
		return current, nil
	}
	return values[idx], nil
}

func (s *session) lookup(ctx context.Context, resource string) ([]lookups.Option, error) {
	if cached, ok := s.choices[resource]; ok {
		return cached, nil
	}
	options, err := s.r.lookups.Lookup(ctx, resource)
	if err != nil {
		return nil, err
	}
	s.choices[resource] = options
	return options, nil
}

// dispatch forwards a structural action to the form. Rejected actions are
// reported and do not end the session.
func (s *session) dispatch(ctx context.Context, block string, action editor.Action, value string) error {
	patches, err := s.form.Dispatch(editor.Event{Block: block, Action: action, Value: value})
	if err != nil {
		s.logger.Debug("tui action rejected", "block", block, "action", action, "error", err)
		s.fail(ctx, err.Error())
		return nil
	}
	s.logger.Debug("tui action", "block", block, "action", action, "patches", len(patches))
	return nil
}

// submit returns ok=false when the form rejected the values; the issues are
// then attached to their fields.
func (s *session) submit(ctx context.Context) ([]byte, bool, error) {
	values := s.state.Merge(s.form.Values())
	submission, err := s.form.Submit(ctx, values)
	if err != nil {
		mapping := render.MapErrorPayload(s.form, render.IssuePayload(err))
		if len(mapping.Fields) == 0 && len(mapping.Form) == 0 {
			s.fail(ctx, err.Error())
			return nil, false, nil
		}
		s.state.SetErrors(mapping.Fields)
		for _, msg := range mapping.Form {
			s.fail(ctx, msg)
		}
		for _, name := range s.state.ErrorNames() {
			s.fail(ctx, name+": "+strings.Join(s.state.ErrorsFor(name), "; "))
		}
		return nil, false, nil
	}
	out, err := s.r.serialize(submission, values)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (r *Renderer) serialize(submission *editor.Submission, values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for k, v := range values {
			form.Set(k, v)
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		return document.MarshalIndent(submission.Document)
	default:
		return append([]byte(nil), submission.JSON...), nil
	}
}

func (s *session) fail(ctx context.Context, msg string) {
	_ = s.r.driver.Info(ctx, s.r.theme.ErrorPrefix+msg)
}

func (s *session) help(name string) string {
	return strings.Join(s.state.ErrorsFor(name), "; ")
}

func (s *session) fieldLabel(f editor.Field) string {
	label := f.Label + ": " + orNone(s.state.Value(f.Name, f.Value))
	if len(s.state.ErrorsFor(f.Name)) > 0 {
		label = s.r.theme.ErrorPrefix + label
	}
	return label
}

func (s *session) blockTitle(id, fallback string) string {
	b, ok := s.form.Block(id)
	if !ok {
		return fallback
	}
	for _, f := range b.Fields {
		if len(s.state.ErrorsFor(f.Name)) > 0 {
			return s.r.theme.ErrorPrefix + fallback
		}
	}
	return fallback
}

func (s *session) mounted(b *editor.Block) bool {
	got, ok := s.form.Block(b.ID)
	return ok && got == b
}

func childOfKind(b *editor.Block, kind editor.Kind) *editor.Block {
	for _, child := range b.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func childrenOfKind(b *editor.Block, kind editor.Kind) []*editor.Block {
	var out []*editor.Block
	for _, child := range b.Children {
		if child.Kind == kind {
			out = append(out, child)
		}
	}
	return out
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}

func required(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func optionalInt(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}
