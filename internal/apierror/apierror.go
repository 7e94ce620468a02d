// Package apierror holds the operational errors surfaced to API callers.
package apierror

import (
	"errors"
	"net/http"
)

// Kind is a stable machine-checkable error identifier.
type Kind string

const (
	KindValidation               Kind = "VALIDATION_ERROR"
	KindDuplicateEmail           Kind = "DUPLICATE_EMAIL"
	KindInvalidCredentials       Kind = "INVALID_CREDENTIALS"
	KindAccountDeactivated       Kind = "ACCOUNT_DEACTIVATED"
	KindMissingToken             Kind = "MISSING_TOKEN"
	KindInvalidToken             Kind = "INVALID_TOKEN"
	KindTokenExpired             Kind = "TOKEN_EXPIRED"
	KindUserGone                 Kind = "USER_GONE"
	KindInvalidRefreshToken      Kind = "INVALID_REFRESH_TOKEN"
	KindInvalidOrExpiredToken    Kind = "INVALID_OR_EXPIRED_TOKEN"
	KindInvalidVerificationToken Kind = "INVALID_VERIFICATION_TOKEN"
	KindForbidden                Kind = "FORBIDDEN"
	KindNotFound                 Kind = "NOT_FOUND"
	KindInternal                 Kind = "INTERNAL_ERROR"
)

// APIError is an expected failure with the HTTP status it maps to.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Details map[string]string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == kind
}

func newErr(kind Kind, status int, msg string) *APIError {
	return &APIError{Kind: kind, Status: status, Message: msg}
}

func NewErrValidation(details map[string]string) *APIError {
	e := newErr(KindValidation, http.StatusBadRequest, "Validation failed")
	e.Details = details
	return e
}

func NewErrDuplicateEmail() *APIError {
	return newErr(KindDuplicateEmail, http.StatusConflict, "User with this email already exists")
}

func NewErrInvalidCredentials() *APIError {
	return newErr(KindInvalidCredentials, http.StatusUnauthorized, "Invalid email or password")
}

func NewErrAccountDeactivated() *APIError {
	return newErr(KindAccountDeactivated, http.StatusUnauthorized, "Account is deactivated")
}

func NewErrMissingToken() *APIError {
	return newErr(KindMissingToken, http.StatusUnauthorized, "Access token required")
}

func NewErrInvalidToken() *APIError {
	return newErr(KindInvalidToken, http.StatusUnauthorized, "Invalid token")
}

func NewErrTokenExpired() *APIError {
	return newErr(KindTokenExpired, http.StatusUnauthorized, "Token expired")
}

func NewErrUserGone() *APIError {
	return newErr(KindUserGone, http.StatusUnauthorized, "User no longer exists")
}

func NewErrInvalidRefreshToken() *APIError {
	return newErr(KindInvalidRefreshToken, http.StatusUnauthorized, "Invalid refresh token")
}

func NewErrRefreshTokenRequired() *APIError {
	return newErr(KindInvalidRefreshToken, http.StatusUnauthorized, "Refresh token required")
}

func NewErrInvalidOrExpiredToken() *APIError {
	return newErr(KindInvalidOrExpiredToken, http.StatusBadRequest, "Invalid or expired reset token")
}

func NewErrInvalidVerificationToken() *APIError {
	return newErr(KindInvalidVerificationToken, http.StatusBadRequest, "Invalid verification token")
}

func NewErrForbidden() *APIError {
	return newErr(KindForbidden, http.StatusForbidden, "Insufficient permissions")
}

func NewErrNotFound(what string) *APIError {
	return newErr(KindNotFound, http.StatusNotFound, what+" not found")
}

// NewErrInternal wraps an unexpected failure. The cause is never rendered to callers in production.
func NewErrInternal(err error) *APIError {
	e := newErr(KindInternal, http.StatusInternalServerError, "Internal server error")
	e.Err = err
	return e
}
