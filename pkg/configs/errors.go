package configs

import (
	"errors"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

var (
	ErrMissingService = faults.New(faults.KindPrecondition, errors.New("configs: service is required"))
	// ErrSaveInFlight rejects a save issued while another save is running.
	ErrSaveInFlight = faults.New(faults.KindConflict, errors.New("configs: save already in progress"))
	ErrMissingID    = faults.New(faults.KindValidation, errors.New("configs: id is required"))
	ErrMissingName  = faults.New(faults.KindValidation, errors.New("configs: name is required"))
)
