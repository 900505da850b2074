package editor

import (
	"errors"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

var (
	// ErrNilDocument is returned by Build without a document.
	ErrNilDocument = faults.New(faults.KindPrecondition, errors.New("editor: document is required"))
	// ErrUnknownBlock is returned for events addressed to blocks that are not
	// mounted, including blocks removed earlier in the session.
	ErrUnknownBlock = faults.New(faults.KindNotFound, errors.New("editor: unknown block"))
	// ErrUnknownAction is returned when a mounted block does not handle an
	// action.
	ErrUnknownAction = faults.New(faults.KindValidation, errors.New("editor: block does not handle action"))
	// ErrUnknownTab is returned when activating or removing a tab that does
	// not exist.
	ErrUnknownTab = faults.New(faults.KindNotFound, errors.New("editor: unknown tab"))
)
