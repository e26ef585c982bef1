package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindValidation        ErrorKind = "ValidationError"
	KindUnauthorized      ErrorKind = "Unauthorized"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindPaymentFailed     ErrorKind = "PaymentFailed"
	KindRemoteUnavailable ErrorKind = "RemoteUnavailable"
	KindNotFound          ErrorKind = "NotFound"
	KindConflict          ErrorKind = "Conflict"
	KindInternal          ErrorKind = "Internal"
)

// AppError is the error type returned by the service layer.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorized(format string, args ...any) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidTransition(format string, args ...any) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewPaymentFailed keeps the gateway's message as the user-facing text.
func NewPaymentFailed(err error) *AppError {
	return &AppError{Kind: KindPaymentFailed, Message: err.Error(), Err: err}
}

func NewRemoteUnavailable(message string, err error) *AppError {
	return &AppError{Kind: KindRemoteUnavailable, Message: message, Err: err}
}

func NewInternal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to its response status.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindPaymentFailed:
		return http.StatusPaymentRequired
	case KindRemoteUnavailable:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
