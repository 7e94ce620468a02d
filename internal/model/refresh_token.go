package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore keeps one record per issued refresh token, keyed by its JTI.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByJTI(ctx context.Context, jti string) (RefreshToken, error)
	// Revoke marks a live token revoked as of at. Only one of several concurrent calls for the
	// same JTI succeeds; the others get ErrTokenRevoked. An unknown JTI yields ErrNotFound.
	Revoke(ctx context.Context, jti string, at time.Time) error
	// RevokeAllByUser revokes every live token of userID and reports how many it revoked.
	RevokeAllByUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

// RefreshToken is the server-side record of an issued refresh token.
// Only the sha256 of the token is kept.
type RefreshToken struct {
	ID             uuid.UUID
	JTI            string
	UserID         uuid.UUID
	TokenHash      []byte
	IssuedAt       time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	RotatedFromJTI *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Revoked reports whether the token was revoked.
func (t RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
