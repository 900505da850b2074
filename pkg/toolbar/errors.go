package toolbar

import (
	"errors"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

var (
	ErrMissingOptions  = faults.New(faults.KindPrecondition, errors.New("toolbar: options are required"))
	ErrMissingLocation = faults.New(faults.KindPrecondition, errors.New("toolbar: a location is required to place a toolbar"))
	ErrMissingButtons  = faults.New(faults.KindPrecondition, errors.New("toolbar: buttons are required"))
	ErrUnknownLocation = faults.New(faults.KindNotFound, errors.New("toolbar: nothing rendered at location"))
	ErrUnknownButton   = faults.New(faults.KindNotFound, errors.New("toolbar: unknown button"))
	ErrUnbound         = faults.New(faults.KindConflict, errors.New("toolbar: button has no handler"))
	ErrButtonDisabled  = faults.New(faults.KindConflict, errors.New("toolbar: button is disabled"))
)
