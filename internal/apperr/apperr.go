// Package apperr holds the error kinds shared by services, access control and
// the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation     = errors.New("validation")          // 400
	ErrConflict       = errors.New("conflict")            // 409
	ErrAuthentication = errors.New("invalid credentials") // 401
	ErrUnauthorized   = errors.New("unauthorized")        // 401
	ErrForbidden      = errors.New("forbidden")           // 403
	ErrRateLimited    = errors.New("rate limited")        // 429
	ErrInternal       = errors.New("internal")            // 500
)

// Error carries a user-facing message and unwraps to its kind.
type Error struct {
	Kind    error
	Message string
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Internal is the generic server error shown to clients.
func Internal() *Error {
	return New(ErrInternal, "Server error")
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Message returns the text safe to show to a client. Errors that are not
// *Error never leak their details.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && !errors.Is(appErr.Kind, ErrInternal) {
		return appErr.Message
	}
	return "Server error"
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrAuthentication), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
