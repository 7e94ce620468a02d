package model

import "context"

type ContextManager interface {
	SetAccountToContext(ctx context.Context, account Account) context.Context
	GetAccountFromContext(ctx context.Context) (Account, bool)
}
