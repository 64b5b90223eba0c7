package apperrors

import (
	"fmt"
	"net/http"
)

// Error represents an application error with an associated HTTP status code.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same category regardless of the wrapped cause,
// so errors.Is(err, ErrGateway) works on values produced by Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == e.Message
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap attaches a cause to one of the sentinel errors below without
// mutating the shared sentinel value.
func Wrap(base *Error, err error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Err: err}
}

// Checkout flow error taxonomy
var (
	ErrNoBill       = New(http.StatusNotFound, "no bill to pay", nil)
	ErrGateway      = New(http.StatusBadGateway, "payment gateway error", nil)
	ErrNotification = New(http.StatusInternalServerError, "notification send failed", nil)
	ErrPersistence  = New(http.StatusInternalServerError, "storage failure", nil)
)
