package model

import "context"

// Notifier delivers account emails. The token argument is the raw value to embed in the link.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}
