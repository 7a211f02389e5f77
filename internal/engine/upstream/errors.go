package upstream

import (
	"errors"
	"fmt"
)

// Failure kinds. Match with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrTransport   = errors.New("transport failure")
)

// Error is a typed collaborator failure.
type Error struct {
	Kind error  // one of ErrNotFound, ErrUnavailable, ErrTransport
	Op   string // collaborator operation, e.g. "fetch_item"
	ID   string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the failure kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds an ErrNotFound failure.
func NotFound(op, id string, cause error) error {
	return &Error{Kind: ErrNotFound, Op: op, ID: id, Err: cause}
}

// Unavailable builds an ErrUnavailable failure.
func Unavailable(op, id string, cause error) error {
	return &Error{Kind: ErrUnavailable, Op: op, ID: id, Err: cause}
}

// Transport builds an ErrTransport failure.
func Transport(op, id string, cause error) error {
	return &Error{Kind: ErrTransport, Op: op, ID: id, Err: cause}
}

// Kind returns the failure label used in tool output and logs:
// "not_found", "unavailable", "transport" or "error" for anything untyped.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrTransport):
		return "transport"
	}
	return "error"
}
