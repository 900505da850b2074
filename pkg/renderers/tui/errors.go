package tui

import (
	"errors"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C or the abort
	// menu entry).
	ErrAborted = errors.New("tui: aborted")
	// ErrMissingForm is returned by Render without a form.
	ErrMissingForm = faults.New(faults.KindPrecondition, errors.New("tui: form is required"))
	// ErrMissingDriver is returned when the prompt driver was cleared.
	ErrMissingDriver = faults.New(faults.KindPrecondition, errors.New("tui: prompt driver is nil"))
)
