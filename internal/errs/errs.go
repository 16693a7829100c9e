// Package errs defines the client-facing error type returned by handlers.
//
// Handlers push an *HTTPError with c.Error when a business rule fails; the
// error middleware renders it as {"error": message} with its status. Any
// other error is treated as internal and rendered with GenericMessage.
package errs

import (
	"net/http"
	"strings"
)

// GenericMessage is the only text a client sees for internal failures.
const GenericMessage = "An error occurred"

type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewValidationError reports missing or malformed input (400).
func NewValidationError(message string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message)
}

// NewAuthError reports bad credentials (401).
func NewAuthError(message string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message)
}

func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

// NewConflictError reports a duplicate unique key (409).
func NewConflictError(message string) *HTTPError {
	return newHTTPError(http.StatusConflict, message)
}

func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message)
}

func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, GenericMessage)
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
