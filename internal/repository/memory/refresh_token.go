package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *DB
}

func NewRefreshTokenRepository(db *DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(_ context.Context, token model.RefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.RevokedAt = nil
	token.CreatedAt, token.UpdatedAt = token.IssuedAt, token.IssuedAt
	token.TokenHash = append([]byte(nil), token.TokenHash...)
	r.db.tokens[token.JTI] = token
	return nil
}

func (r *RefreshTokenRepository) GetByJTI(_ context.Context, jti string) (model.RefreshToken, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	token, ok := r.db.tokens[jti]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return token, nil
}

// Revoke checks and sets under the write lock so exactly one caller wins.
func (r *RefreshTokenRepository) Revoke(_ context.Context, jti string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	token, ok := r.db.tokens[jti]
	switch {
	case !ok:
		return model.ErrNotFound
	case token.Revoked():
		return model.ErrTokenRevoked
	}
	r.db.tokens[jti] = revoked(token, at)
	return nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for jti, token := range r.db.tokens {
		if token.UserID == userID && !token.Revoked() {
			r.db.tokens[jti] = revoked(token, at)
			n++
		}
	}
	return n, nil
}

func revoked(token model.RefreshToken, at time.Time) model.RefreshToken {
	token.RevokedAt = &at
	token.UpdatedAt = at
	return token
}
