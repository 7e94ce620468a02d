package context

import (
	"context"

	"github.com/dtroode/account-service/internal/model"
)

type accountKey struct{}

// Manager stores the authenticated account in a request context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetAccountToContext returns a copy of ctx carrying account.
func (m *Manager) SetAccountToContext(ctx context.Context, account model.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// GetAccountFromContext returns the account set by SetAccountToContext.
func (m *Manager) GetAccountFromContext(ctx context.Context) (model.Account, bool) {
	account, ok := ctx.Value(accountKey{}).(model.Account)
	return account, ok
}
