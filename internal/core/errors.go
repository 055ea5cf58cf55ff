// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedUpstream   = errors.New("malformed upstream response")
	ErrPersistence         = errors.New("persistence error")
	ErrNotConfigured       = errors.New("not configured")
)

const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicate           = "DUPLICATE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeQuotaExceeded       = "QUOTA_EXCEEDED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeMalformedUpstream   = "MALFORMED_UPSTREAM_RESPONSE"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeNotConfigured       = "NOT_CONFIGURED"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError pairs an underlying error with the HTTP status and message that
// should reach the client.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
	Headers    map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	appErr := NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, CodeUnauthorized)
	appErr.Headers = map[string]string{"WWW-Authenticate": "Bearer"}
	return appErr
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrForbidden, message, http.StatusForbidden, CodeForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		CodeNotFound,
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		CodeDuplicate,
	)
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusUnprocessableEntity,
		CodeValidation,
	)
}

func TokenInvalidError() *AppError {
	appErr := NewAppError(
		ErrTokenInvalid,
		"invalid authentication token",
		http.StatusUnauthorized,
		CodeUnauthorized,
	)
	appErr.Headers = map[string]string{"WWW-Authenticate": "Bearer"}
	return appErr
}

func QuotaExceededError() *AppError {
	return NewAppError(
		ErrQuotaExceeded,
		"daily quota reached",
		http.StatusTooManyRequests,
		CodeQuotaExceeded,
	)
}

func UpstreamUnavailableError(message string) *AppError {
	return NewAppError(
		ErrUpstreamUnavailable,
		message,
		http.StatusServiceUnavailable,
		CodeUpstreamUnavailable,
	)
}

func MalformedUpstreamError(message string) *AppError {
	return NewAppError(
		ErrMalformedUpstream,
		message,
		http.StatusInternalServerError,
		CodeMalformedUpstream,
	)
}

func PersistenceError() *AppError {
	return NewAppError(
		ErrPersistence,
		"failed to save result",
		http.StatusInternalServerError,
		CodePersistence,
	)
}

func NotConfiguredError(what string) *AppError {
	return NewAppError(
		ErrNotConfigured,
		what+" is not configured",
		http.StatusInternalServerError,
		CodeNotConfigured,
	)
}

// MapError converts the core sentinel taxonomy into an AppError. Errors that
// match nothing become a generic 500.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidError()
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("insufficient permissions")
	case errors.Is(err, ErrNotFound):
		return NotFoundError("resource")
	case errors.Is(err, ErrDuplicateKey):
		return DuplicateError("resource")
	case errors.Is(err, ErrInvalidInput):
		return ValidationError(err.Error())
	case errors.Is(err, ErrQuotaExceeded):
		return QuotaExceededError()
	case errors.Is(err, ErrUpstreamUnavailable):
		return UpstreamUnavailableError("nutrition service unavailable")
	case errors.Is(err, ErrMalformedUpstream):
		return MalformedUpstreamError("could not read nutrition estimate")
	case errors.Is(err, ErrPersistence):
		return PersistenceError()
	case errors.Is(err, ErrNotConfigured):
		return NotConfiguredError("service")
	}

	return NewAppError(err, "internal server error", http.StatusInternalServerError, CodeInternal)
}
