// Package memory keeps accounts and refresh tokens in process memory.
// It backs the "memory" database driver and end-to-end tests.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/model"
)

// DB is the shared state behind the memory repositories.
type DB struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]model.Account
	tokens   map[string]model.RefreshToken
}

func NewDB() *DB {
	return &DB{
		accounts: make(map[uuid.UUID]model.Account),
		tokens:   make(map[string]model.RefreshToken),
	}
}

func (db *DB) Close() error {
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneAccount(a model.Account) model.Account {
	a.Phone = cloneString(a.Phone)
	a.VerificationTokenHash = cloneString(a.VerificationTokenHash)
	a.ResetTokenHash = cloneString(a.ResetTokenHash)
	a.AvatarKey = cloneString(a.AvatarKey)
	if a.ResetExpires != nil {
		t := *a.ResetExpires
		a.ResetExpires = &t
	}
	if a.LastLogin != nil {
		t := *a.LastLogin
		a.LastLogin = &t
	}
	if a.DeletedAt != nil {
		t := *a.DeletedAt
		a.DeletedAt = &t
	}
	return a
}
