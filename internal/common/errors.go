package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrForbidden          = errors.New("forbidden access")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., email already registered
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidToken) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show a client for err.
// Auth and lookup failures get a fixed text; validation and conflict
// errors carry a message written by this service, so it is echoed.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrInvalidToken):
		return "Invalid or expired reset token"
	case errors.Is(err, ErrUnauthorized):
		return "Could not validate credentials"
	case errors.Is(err, ErrForbidden):
		return "Insufficient permissions"
	case errors.Is(err, ErrNotFound):
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nf.Resource + " not found"
		}
		return "Resource not found"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest), errors.Is(err, ErrConflict):
		var ve *ValidationError
		if errors.As(err, &ve) {
			return ve.Message
		}
		return err.Error()
	}
	return "Internal server error"
}

// ValidationError carries a client-facing message along with its category.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Kind }

// Invalid builds an ErrValidation with a client-facing message.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds an ErrConflict with a client-facing message.
func Conflict(message string) error {
	return &ValidationError{Kind: ErrConflict, Message: message}
}

// BadRequest builds an ErrBadRequest with a client-facing message.
func BadRequest(message string) error {
	return &ValidationError{Kind: ErrBadRequest, Message: message}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
