// Package faults classifies errors surfaced by the editor, the page controller
// and the configuration service so callers can pick a presentation (modal,
// inline banner, HTTP status) without string matching.
package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the high level class of an error.
type Kind string

const (
	// KindPrecondition marks configuration mistakes such as a missing required
	// constructor argument. Not recoverable at runtime.
	KindPrecondition Kind = "precondition"
	// KindService marks a fetch/save response that carried an error flag.
	KindService Kind = "service"
	// KindNotFound marks a missing or deleted document.
	KindNotFound Kind = "not_found"
	// KindValidation marks a document or submission that failed validation.
	KindValidation Kind = "validation"
	// KindConflict marks an operation rejected because of concurrent state.
	KindConflict Kind = "conflict"
	// KindInternal marks anything else.
	KindInternal Kind = "internal"
)

// Error wraps an underlying error with a Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New wraps err with kind. A nil err is replaced by an error named after the
// kind so the result is never nil.
func New(kind Kind, err error) error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Error{Kind: kind, Err: err}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return New(kind, fmt.Errorf(format, args...))
}

// KindOf returns the outermost Kind attached to err, or KindInternal when err
// carries none. A nil err has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) && typed != nil {
		return typed.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode maps an error onto the HTTP status used by the server.
func StatusCode(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindPrecondition, KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
