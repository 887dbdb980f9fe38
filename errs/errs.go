package errs

import (
	"fmt"
	"net/http"
)

// Error is the application error carried from services up to controllers.
// Code is the HTTP status the error maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause so errors.Is/As see through it.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation reports a malformed or missing field (400).
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// NotFound reports an unknown product, order or cart (404).
func NotFound(message string, err error) *Error {
	return New(http.StatusNotFound, message, err)
}

// InsufficientStock reports a reservation that exceeds available stock (400).
func InsufficientStock(message string, err error) *Error {
	return New(http.StatusBadRequest, message, err)
}

// InvalidTransition reports an illegal order status change (400).
func InvalidTransition(message string, err error) *Error {
	return New(http.StatusBadRequest, message, err)
}

// Conflict reports a concurrent duplicate of an in-flight request (409).
func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

// Internal reports an unexpected failure (500). The cause is kept for
// logging but never surfaced to the caller.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "Internal server error", err)
}

// IsInternal reports whether the error should be logged rather than
// treated as a business-rule rejection.
func (e *Error) IsInternal() bool {
	return e.Code >= http.StatusInternalServerError
}
