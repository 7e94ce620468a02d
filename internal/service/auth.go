package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

// Auth drives the account lifecycle: registration, login, token refresh,
// email verification and password reset.
type Auth struct {
	credentials *Credentials
	tokens      *TokenService
	notifier    model.Notifier
	resetTTL    time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

func NewAuth(
	credentials *Credentials,
	tokens *TokenService,
	notifier model.Notifier,
	resetTTL time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		credentials: credentials,
		tokens:      tokens,
		notifier:    notifier,
		resetTTL:    resetTTL,
		logger:      logger,
		now:         time.Now,
	}
}

func (a *Auth) Register(ctx context.Context, in model.Registration) (model.Session, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", in.Email)

	verificationToken := newVerificationToken()
	account, err := a.credentials.Create(ctx, model.AccountDraft{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      model.RoleUser,
	}, &verificationToken)
	if err != nil {
		return model.Session{}, err
	}

	tokens, err := a.tokens.Issue(ctx, account.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"account_id", account.ID.String(),
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	if err := a.notifier.SendVerificationEmail(ctx, account.Email, verificationToken); err != nil {
		a.logger.Error("Auth service: failed to send verification email",
			"account_id", account.ID.String(),
			"error", err.Error())
	}

	a.logger.Info("Auth service: user registered",
		"account_id", account.ID.String(),
		"email", account.Email)

	return model.Session{Account: account, Tokens: tokens}, nil
}

// Login fails with the same InvalidCredentials error for an unknown email and a wrong password.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Session, error) {
	account, err := a.credentials.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		_ = a.credentials.CompareDummy(password)
		a.logger.Info("Auth service: login failed",
			"email", email)
		return model.Session{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get account by email: %w", err)
	}

	if err := a.credentials.ComparePassword(account, password); err != nil {
		if errors.Is(err, model.ErrPasswordMismatch) {
			a.logger.Info("Auth service: login failed",
				"email", email)
			return model.Session{}, apierror.NewErrInvalidCredentials()
		}
		return model.Session{}, fmt.Errorf("failed to compare password: %w", err)
	}

	if !account.IsActive {
		a.logger.Info("Auth service: login to deactivated account",
			"account_id", account.ID.String())
		return model.Session{}, apierror.NewErrAccountDeactivated()
	}

	now := a.now()
	account, err = a.credentials.Apply(ctx, account.ID, model.AccountUpdate{LastLogin: &now})
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to record last login: %w", err)
	}

	tokens, err := a.tokens.Issue(ctx, account.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"account_id", account.ID.String())

	return model.Session{Account: account, Tokens: tokens}, nil
}

// RefreshToken exchanges a valid refresh token of an active account for a new pair.
func (a *Auth) RefreshToken(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	userID, jti, err := a.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		if isTokenError(err) {
			a.logger.Info("Auth service: refresh rejected",
				"reason", err.Error())
			return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
		}
		return model.TokenPair{}, fmt.Errorf("failed to verify refresh token: %w", err)
	}

	account, err := a.credentials.FindByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to get account: %w", err)
	}
	if !account.IsActive {
		return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
	}

	tokens, err := a.tokens.Rotate(ctx, account.ID, jti)
	if err != nil {
		if isTokenError(err) {
			a.logger.Info("Auth service: refresh rejected",
				"account_id", account.ID.String(),
				"reason", err.Error())
			return model.TokenPair{}, apierror.NewErrInvalidRefreshToken()
		}
		return model.TokenPair{}, fmt.Errorf("failed to rotate tokens: %w", err)
	}

	a.logger.Debug("Auth service: tokens refreshed",
		"account_id", account.ID.String())

	return tokens, nil
}

// Logout revokes the presented refresh token when revocation is enabled. It never fails.
func (a *Auth) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := a.tokens.RevokeByToken(ctx, refreshToken); err != nil {
		a.logger.Warn("Auth service: failed to revoke refresh token on logout",
			"error", err.Error())
	}
}

// ForgotPassword opens a reset window for email if the account exists.
// The caller sees the same outcome either way.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	account, err := a.credentials.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Debug("Auth service: password reset for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get account by email: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	hash := hashSecret(token)
	expires := a.now().Add(a.resetTTL)

	_, err = a.credentials.Apply(ctx, account.ID, model.AccountUpdate{ResetTokenHash: &hash, ResetExpires: &expires})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := a.notifier.SendPasswordResetEmail(ctx, account.Email, token); err != nil {
		a.logger.Error("Auth service: failed to send password reset email",
			"account_id", account.ID.String(),
			"error", err.Error())
	}

	a.logger.Info("Auth service: password reset requested",
		"account_id", account.ID.String())

	return nil
}

// ResetPassword consumes a reset token. Expiry is re-checked here, not only in the lookup.
func (a *Auth) ResetPassword(ctx context.Context, token, newPassword string) error {
	now := a.now()
	account, err := a.credentials.FindByResetToken(ctx, token, now)
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NewErrInvalidOrExpiredToken()
	}
	if err != nil {
		return fmt.Errorf("failed to get account by reset token: %w", err)
	}
	if account.ResetExpires == nil || !account.ResetExpires.After(now) {
		return apierror.NewErrInvalidOrExpiredToken()
	}

	if _, err := a.credentials.ReplacePassword(ctx, account.ID, newPassword); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NewErrInvalidOrExpiredToken()
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	if err := a.tokens.RevokeAllForUser(ctx, account.ID); err != nil {
		a.logger.Error("Auth service: failed to revoke sessions after password reset",
			"account_id", account.ID.String(),
			"error", err.Error())
	}

	a.logger.Info("Auth service: password reset completed",
		"account_id", account.ID.String())

	return nil
}

// VerifyEmail consumes a verification token. A consumed token cannot be reused.
func (a *Auth) VerifyEmail(ctx context.Context, token string) error {
	account, err := a.credentials.FindByVerificationToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NewErrInvalidVerificationToken()
	}
	if err != nil {
		return fmt.Errorf("failed to get account by verification token: %w", err)
	}

	verified := true
	_, err = a.credentials.Apply(ctx, account.ID, model.AccountUpdate{EmailVerified: &verified, ClearVerificationToken: true})
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NewErrInvalidVerificationToken()
	}
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	a.logger.Info("Auth service: email verified",
		"account_id", account.ID.String())

	return nil
}

// UpdateProfile changes the caller's own name and phone.
func (a *Auth) UpdateProfile(ctx context.Context, id uuid.UUID, in model.ProfileUpdate) (model.Account, error) {
	account, err := a.credentials.Update(ctx, id, model.AccountPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	})
	if errors.Is(err, model.ErrNotFound) {
		return model.Account{}, apierror.NewErrUserGone()
	}
	if err != nil {
		return model.Account{}, err
	}
	return account, nil
}

// Authenticate resolves an access token to an active account.
func (a *Auth) Authenticate(ctx context.Context, accessToken string) (model.Account, error) {
	if accessToken == "" {
		return model.Account{}, apierror.NewErrMissingToken()
	}

	userID, err := a.tokens.VerifyAccess(accessToken)
	if err != nil {
		if errors.Is(err, model.ErrTokenExpired) {
			return model.Account{}, apierror.NewErrTokenExpired()
		}
		return model.Account{}, apierror.NewErrInvalidToken()
	}

	account, err := a.credentials.FindByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Account{}, apierror.NewErrUserGone()
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	if !account.IsActive {
		return model.Account{}, apierror.NewErrAccountDeactivated()
	}

	return account, nil
}

func isTokenError(err error) bool {
	return errors.Is(err, model.ErrTokenInvalid) ||
		errors.Is(err, model.ErrTokenExpired) ||
		errors.Is(err, model.ErrTokenRevoked) ||
		errors.Is(err, model.ErrTokenMismatch)
}
