package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrPasswordMismatch = errors.New("password mismatch")
)

var (
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenMismatch = errors.New("refresh token mismatch")
)
