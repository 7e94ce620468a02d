package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

// TokenService provides high-level operations for issuing, refreshing,
// and revoking tokens. It composes the TokenManager and RefreshTokenStore.
// A nil store makes refresh tokens stateless: they stay valid until expiry.
type TokenService struct {
	manager    model.TokenManager
	store      model.RefreshTokenStore
	refreshTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewTokenService creates a TokenService. refreshTTL must match the manager's
// refresh lifetime; it is only used for the persisted expiry.
func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, refreshTTL time.Duration, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, refreshTTL: refreshTTL, logger: logger, now: time.Now}
}

// Stateful reports whether refresh tokens are recorded and revocable.
func (s *TokenService) Stateful() bool {
	return s.store != nil
}

// Issue creates a fresh token pair for userID.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	return s.issue(ctx, userID, nil)
}

func (s *TokenService) issue(ctx context.Context, userID uuid.UUID, rotatedFrom *string) (model.TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, jti, err := s.manager.GenerateRefreshToken(userID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	if s.store != nil {
		now := s.now()
		rt := model.RefreshToken{
			ID:             uuid.New(),
			JTI:            jti,
			UserID:         userID,
			TokenHash:      hashRefresh(refresh),
			IssuedAt:       now,
			ExpiresAt:      now.Add(s.refreshTTL),
			RotatedFromJTI: rotatedFrom,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.store.Create(ctx, rt); err != nil {
			return model.TokenPair{}, fmt.Errorf("persist refresh: %w", err)
		}
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess returns the user ID an access token was issued for.
func (s *TokenService) VerifyAccess(token string) (uuid.UUID, error) {
	return s.manager.ParseAccessToken(token)
}

// VerifyRefresh checks signature and expiry and, when stateful, that the
// token is still recorded and not revoked.
func (s *TokenService) VerifyRefresh(ctx context.Context, presentedRefresh string) (userID uuid.UUID, jti string, err error) {
	userID, jti, err = s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return uuid.Nil, "", err
	}
	if s.store == nil {
		return userID, jti, nil
	}

	rt, err := s.store.GetByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return uuid.Nil, "", fmt.Errorf("%w: unknown jti", model.ErrTokenInvalid)
		}
		return uuid.Nil, "", fmt.Errorf("load refresh: %w", err)
	}

	if err := validateRecord(rt, hashRefresh(presentedRefresh), s.now()); err != nil {
		if errors.Is(err, model.ErrTokenRevoked) {
			s.logger.Warn("Token service: revoked refresh token presented",
				"user_id", rt.UserID.String(),
				"jti", jti)
		}
		return uuid.Nil, "", err
	}

	return userID, jti, nil
}

// Rotate revokes the refresh token identified by oldJTI and issues a new pair.
// The revoke is the point of no return: when a concurrent rotation already consumed oldJTI,
// Rotate fails with model.ErrTokenRevoked and mints nothing.
func (s *TokenService) Rotate(ctx context.Context, userID uuid.UUID, oldJTI string) (model.TokenPair, error) {
	if s.store == nil {
		return s.issue(ctx, userID, nil)
	}

	err := s.store.Revoke(ctx, oldJTI, s.now())
	switch {
	case errors.Is(err, model.ErrTokenRevoked):
		s.logger.Warn("Token service: refresh token reused during rotation",
			"user_id", userID.String(),
			"jti", oldJTI)
		return model.TokenPair{}, err
	case errors.Is(err, model.ErrNotFound):
		return model.TokenPair{}, fmt.Errorf("%w: unknown jti", model.ErrTokenInvalid)
	case err != nil:
		return model.TokenPair{}, fmt.Errorf("revoke old refresh: %w", err)
	}

	rotatedFrom := oldJTI
	return s.issue(ctx, userID, &rotatedFrom)
}

// RevokeByToken revokes a presented refresh token. Tokens that are already revoked or were
// never recorded count as done. Without a store it is a no-op.
func (s *TokenService) RevokeByToken(ctx context.Context, presentedRefresh string) error {
	if s.store == nil {
		return nil
	}
	_, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return err
	}

	err = s.store.Revoke(ctx, jti, s.now())
	if errors.Is(err, model.ErrTokenRevoked) || errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}

// RevokeAllForUser revokes every outstanding refresh token of userID.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if s.store == nil {
		return nil
	}
	n, err := s.store.RevokeAllByUser(ctx, userID, s.now())
	if err != nil {
		return err
	}
	s.logger.Debug("Token service: refresh tokens revoked",
		"user_id", userID.String(),
		"count", n)
	return nil
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func validateRecord(rt model.RefreshToken, presentedHash []byte, now time.Time) error {
	if rt.Revoked() {
		return model.ErrTokenRevoked
	}
	if rt.Expired(now) {
		return model.ErrTokenExpired
	}
	if !equalBytes(rt.TokenHash, presentedHash) {
		return model.ErrTokenMismatch
	}
	return nil
}

func equalBytes(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
