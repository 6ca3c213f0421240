package etb

import (
	"errors"
	"fmt"

	"github.com/alwitt/bluelight/db"
)

// ErrorKindENUMType service error classification ENUM type
type ErrorKindENUMType string

const (
	// ErrorKindNotFound the entry or attachment does not exist
	ErrorKindNotFound ErrorKindENUMType = "NOT_FOUND"
	// ErrorKindBadRequest the request is invalid, or violates an entry lifecycle rule
	ErrorKindBadRequest ErrorKindENUMType = "BAD_REQUEST"
	// ErrorKindConflict a concurrent operation changed the entry first
	ErrorKindConflict ErrorKindENUMType = "CONFLICT"
	// ErrorKindInternal unexpected failure
	ErrorKindInternal ErrorKindENUMType = "INTERNAL"
)

// Error service operation failure
type Error struct {
	// Kind error classification
	Kind ErrorKindENUMType
	// Message human readable description
	Message string
	// Err underlying cause, if any
	Err error
}

// Error implement error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]", e.Message, e.Err.Error())
	}
	return e.Message
}

// Unwrap expose the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKindENUMType, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func notFound(format string, args ...interface{}) *Error {
	return newError(ErrorKindNotFound, nil, format, args...)
}

func badRequest(cause error, format string, args ...interface{}) *Error {
	return newError(ErrorKindBadRequest, cause, format, args...)
}

func internal(cause error, format string, args ...interface{}) *Error {
	return newError(ErrorKindInternal, cause, format, args...)
}

// fromDBError classify a persistence layer error
func fromDBError(err error, format string, args ...interface{}) *Error {
	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case errors.Is(err, db.ErrNotFound):
		return newError(ErrorKindNotFound, err, format, args...)
	case errors.Is(err, db.ErrConflict):
		return newError(ErrorKindConflict, err, format, args...)
	}
	return newError(ErrorKindInternal, err, format, args...)
}

// KindOf classification of an error returned by the service. Errors not raised by the
// service are Internal.
func KindOf(err error) ErrorKindENUMType {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ErrorKindInternal
}

// IsNotFound whether the error is a NotFound service error
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == ErrorKindNotFound
}

// IsBadRequest whether the error is a BadRequest service error
func IsBadRequest(err error) bool {
	return err != nil && KindOf(err) == ErrorKindBadRequest
}

// IsConflict whether the error is a Conflict service error
func IsConflict(err error) bool {
	return err != nil && KindOf(err) == ErrorKindConflict
}
