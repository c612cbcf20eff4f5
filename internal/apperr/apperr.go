// Package apperr defines the failure kinds reported across the service
// boundary. Handlers map a Kind to an HTTP status; nothing below the service
// layer is exposed to clients verbatim.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation          Kind = "validation_failed"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindInvalidRefreshToken Kind = "invalid_refresh_token"
	KindRefreshTokenExpired Kind = "refresh_token_expired"
	KindInvalidResetToken   Kind = "invalid_or_expired_reset_token"
	KindUserNotFound        Kind = "user_not_found"
	KindNotFound            Kind = "not_found"
	KindUnauthenticated     Kind = "unauthenticated"
	KindForbidden           Kind = "forbidden"
	KindInternal            Kind = "internal"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Internal hides cause from clients; it stays reachable through Unwrap for logs.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: cause}
}

// KindOf reports the Kind of err, treating unknown errors as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidResetToken:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindInvalidRefreshToken, KindRefreshTokenExpired, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUserNotFound, KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
