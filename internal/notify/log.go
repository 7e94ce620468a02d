package notify

import (
	"context"

	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

var _ model.Notifier = (*Log)(nil)

// Log is the notifier used when no mail API key is configured.
// It records that an email would have been sent, without the token.
type Log struct {
	logger *logger.Logger
}

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SendVerificationEmail(_ context.Context, to, _ string) error {
	l.logger.Info("Notifier: verification email not sent, mail is disabled",
		"to", to)
	return nil
}

func (l *Log) SendPasswordResetEmail(_ context.Context, to, _ string) error {
	l.logger.Info("Notifier: password reset email not sent, mail is disabled",
		"to", to)
	return nil
}
