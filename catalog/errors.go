package catalog

import (
	"errors"
	"fmt"

	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/media"
	"github.com/amonks/catalog/publish"
)

// Kind classifies a failed operation for the caller.
type Kind int

const (
	// Internal means the catalog itself is broken, for example a row that
	// was just written could not be read back.
	Internal Kind = iota

	// Validation means the request was malformed or would leave an
	// entity incomplete for its status.
	Validation

	// Conflict means a unique key was still taken after retrying.
	Conflict

	// Reference means the request names a row that does not exist.
	Reference

	// NotFound means the entity being operated on does not exist.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case Reference:
		return "reference"
	case NotFound:
		return "not found"
	default:
		return "internal"
	}
}

// Error is returned by every Service operation that fails.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinels below by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: Validation}
	ErrConflict   = &Error{Kind: Conflict}
	ErrReference  = &Error{Kind: Reference}
	ErrNotFound   = &Error{Kind: NotFound}
	ErrInternal   = &Error{Kind: Internal}
)

// KindOf returns the Kind of err. Errors that did not come from this
// package are Internal.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return Internal
}

const referenceMessage = "One or more referenced records do not exist."

func invalid(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func missing(entity, id string) *Error {
	return &Error{Kind: NotFound, Message: entity + " not found.", Err: fmt.Errorf("id '%s'", id)}
}

// storageError turns an error from inside a write transaction into an
// Error. defaultMessage describes the failed operation.
func storageError(err error, defaultMessage string) error {
	var cerr *Error
	var perr *publish.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &cerr):
		return cerr
	case errors.As(err, &perr):
		return &Error{Kind: Validation, Message: perr.Message}
	case errors.Is(err, media.ErrInvalidLocator):
		return &Error{Kind: Validation, Message: err.Error()}
	case db.IsUniqueViolation(err):
		return &Error{Kind: Conflict, Message: defaultMessage, Err: err}
	case db.IsForeignKeyViolation(err):
		return &Error{Kind: Reference, Message: referenceMessage, Err: err}
	case db.IsConstraintViolation(err):
		return &Error{Kind: Validation, Message: defaultMessage, Err: err}
	default:
		return &Error{Kind: Internal, Message: defaultMessage, Err: err}
	}
}
