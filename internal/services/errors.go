package services

import (
	"errors"
	"fmt"
	"net/http"

	goa "goa.design/goa/v3/pkg"
)

// Error names shared by every service; the transport maps them to HTTP statuses.
const (
	ErrNameBadRequest      = "bad_request"
	ErrNameUnauthorized    = "unauthorized"
	ErrNameNotFound        = "not_found"
	ErrNameTooManyRequests = "too_many_requests"
)

// BadRequest creates a client input error
func BadRequest(message string) *goa.ServiceError {
	return goa.PermanentError(ErrNameBadRequest, "%s", message)
}

// Unauthorized creates an authorization error
func Unauthorized(message string) *goa.ServiceError {
	return goa.PermanentError(ErrNameUnauthorized, "%s", message)
}

// NotFound creates a missing resource error
func NotFound(message string) *goa.ServiceError {
	return goa.PermanentError(ErrNameNotFound, "%s", message)
}

// TooManyRequests creates a throttling error
func TooManyRequests(message string) *goa.ServiceError {
	return goa.TemporaryError(ErrNameTooManyRequests, "%s", message)
}

// Internal creates a server-side error. The message is what the client sees;
// the cause is only for logs.
func Internal(message string, cause error) error {
	fault := goa.Fault("%s", message)
	if cause == nil {
		return fault
	}
	return &internalError{ServiceError: fault, cause: cause}
}

type internalError struct {
	*goa.ServiceError
	cause error
}

func (e *internalError) Error() string {
	return fmt.Sprintf("%s: %v", e.ServiceError.Message, e.cause)
}

func (e *internalError) Unwrap() error {
	return e.cause
}

// StatusCode maps a service error to its HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	var ie *internalError
	if errors.As(err, &ie) {
		return http.StatusInternalServerError
	}
	var se *goa.ServiceError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Name {
	case ErrNameBadRequest:
		return http.StatusBadRequest
	case ErrNameUnauthorized:
		return http.StatusUnauthorized
	case ErrNameNotFound:
		return http.StatusNotFound
	case ErrNameTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to clients.
func PublicMessage(err error) string {
	var ie *internalError
	if errors.As(err, &ie) {
		return ie.ServiceError.Message
	}
	var se *goa.ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return "Server error"
}
