package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes errors surfaced to collaborators.
type Kind string

const (
	// InvalidParameter indicates non-positive, empty or malformed caller input.
	InvalidParameter Kind = "INVALID_PARAMETER"

	// NotFound indicates a referenced product or sale does not exist.
	NotFound Kind = "NOT_FOUND"

	// Configuration indicates the settings store is missing required keys.
	Configuration Kind = "CONFIGURATION"
)

// Error is a domain error with a kind the caller can branch on.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid returns an InvalidParameter error.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: InvalidParameter, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf returns a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Configf returns a Configuration error.
func Configf(format string, args ...any) *Error {
	return &Error{Kind: Configuration, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of the first *Error in err's chain.
// Returns "" when err carries no domain kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
