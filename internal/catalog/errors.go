package catalog

import (
	"errors"
	"net/http"

	"crimson-db/internal/db"
)

// Kind classifies a failure so the HTTP layer can pick a status code.
type Kind int

const (
	InternalError Kind = iota
	InvalidIdentifier
	MissingRequiredField
	EmptyUpdate
	Unauthorized
	Forbidden
	NotFound
	Conflict
	InvalidReference
)

func (k Kind) String() string {
	switch k {
	case InvalidIdentifier:
		return "invalid_identifier"
	case MissingRequiredField:
		return "missing_required_field"
	case EmptyUpdate:
		return "empty_update"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InvalidReference:
		return "invalid_reference"
	default:
		return "internal_error"
	}
}

// Error is a classified failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or
// InternalError when there is none.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return InternalError
}

// Message returns the client-facing message carried by err.
func Message(err error) string {
	var cerr *Error
	if errors.As(err, &cerr) && cerr.Message != "" {
		return cerr.Message
	}
	return "Internal server error"
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case InvalidIdentifier, MissingRequiredField, EmptyUpdate, InvalidReference:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// classify turns a store error into an *Error. entity names the record in
// the not-found message, e.g. "Game" gives "Game not found".
func classify(err error, entity string) error {
	if err == nil {
		return nil
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return err
	}
	switch {
	case db.IsNotFound(err):
		return &Error{Kind: NotFound, Message: entity + " not found", Err: err}
	case db.IsUniqueViolation(err):
		return &Error{Kind: Conflict, Message: entity + " already exists", Err: err}
	case db.IsForeignKeyViolation(err):
		return &Error{Kind: InvalidReference, Message: entity + " references a missing record", Err: err}
	case db.IsPermissionDenied(err):
		return &Error{Kind: Forbidden, Message: "Permission denied", Err: err}
	default:
		return &Error{Kind: InternalError, Message: "Failed to access " + lowerFirst(entity), Err: err}
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
