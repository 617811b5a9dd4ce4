package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when an operation requires an authenticated
// identity and none is present on the request context.
var ErrUnauthorized = errors.New("authentication required")

// ValidationError reports a malformed or inconsistent request. Nothing has
// been persisted when it is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing show, seat set or booking.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports seats lost to a concurrent claim. UnavailableSeatIDs
// lists the seats known to be taken; FailedCount is used when a race is
// detected after the fact and the exact ids are held by the winning party.
type ConflictError struct {
	UnavailableSeatIDs []string
	FailedCount        int
	Msg                string
}

func (e *ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if len(e.UnavailableSeatIDs) > 0 {
		return fmt.Sprintf("seats unavailable: %s", strings.Join(e.UnavailableSeatIDs, ", "))
	}
	return fmt.Sprintf("%d seat(s) were claimed by another buyer", e.FailedCount)
}

// AsValidation reports whether err is a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// AsNotFound reports whether err is a NotFoundError.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	ok := errors.As(err, &nf)
	return nf, ok
}

// AsConflict reports whether err is a ConflictError.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}
