package service

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

var _ model.Notifier = (*Mailer)(nil)

// Mailer sends emails in the background so account operations never wait on
// or fail because of delivery. Failures are logged only.
type Mailer struct {
	notifier model.Notifier
	timeout  time.Duration
	logger   *logger.Logger
	wg       sync.WaitGroup
}

func NewMailer(notifier model.Notifier, timeout time.Duration, logger *logger.Logger) *Mailer {
	return &Mailer{notifier: notifier, timeout: timeout, logger: logger}
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	m.dispatch(ctx, "verification", to, func(ctx context.Context) error {
		return m.notifier.SendVerificationEmail(ctx, to, token)
	})
	return nil
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	m.dispatch(ctx, "password_reset", to, func(ctx context.Context) error {
		return m.notifier.SendPasswordResetEmail(ctx, to, token)
	})
	return nil
}

func (m *Mailer) dispatch(ctx context.Context, kind, to string, send func(context.Context) error) {
	// detached so the send outlives the request
	sendCtx := context.WithoutCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		if m.timeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(sendCtx, m.timeout)
			defer cancel()
		}

		if err := send(sendCtx); err != nil {
			m.logger.Error("Mailer: failed to send email",
				"kind", kind,
				"to", to,
				"error", err.Error())
			return
		}
		m.logger.Debug("Mailer: email sent",
			"kind", kind,
			"to", to)
	}()
}

// Wait blocks until in-flight sends finish or ctx is done.
func (m *Mailer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
