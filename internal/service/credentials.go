package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

// Credentials persists accounts and owns password hashing at rest.
// Plaintext passwords never go past this type.
type Credentials struct {
	store     model.AccountStore
	hasher    model.PasswordHasher
	logger    *logger.Logger
	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewCredentials(store model.AccountStore, hasher model.PasswordHasher, logger *logger.Logger) *Credentials {
	return &Credentials{
		store:  store,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Create hashes the draft password and stores a new active account.
func (c *Credentials) Create(ctx context.Context, draft model.AccountDraft, verificationToken *string) (model.Account, error) {
	if draft.Password == "" {
		return model.Account{}, apierror.NewErrValidation(map[string]string{"password": "Password is required"})
	}

	hash, err := c.hasher.Hash(draft.Password)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := draft.Role
	if role == "" {
		role = model.RoleUser
	}

	var verificationHash *string
	if verificationToken != nil {
		h := hashSecret(*verificationToken)
		verificationHash = &h
	}

	now := c.now()
	account := model.Account{
		ID:                    uuid.New(),
		Email:                 strings.ToLower(strings.TrimSpace(draft.Email)),
		PasswordHash:          hash,
		FirstName:             draft.FirstName,
		LastName:              draft.LastName,
		Phone:                 draft.Phone,
		IsActive:              true,
		EmailVerified:         draft.EmailVerified,
		VerificationTokenHash: verificationHash,
		Role:                  role,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	saved, err := c.store.Create(ctx, account)
	if errors.Is(err, model.ErrDuplicateEmail) {
		c.logger.Info("Credentials: email already registered",
			"email", account.Email)
		return model.Account{}, apierror.NewErrDuplicateEmail()
	}
	if err != nil {
		c.logger.Error("Credentials: failed to create account",
			"email", account.Email,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	return saved, nil
}

// FindByID returns model.ErrNotFound for unknown or deleted accounts.
func (c *Credentials) FindByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	return c.store.GetByID(ctx, id)
}

// FindByEmail returns model.ErrNotFound for unknown or deleted accounts.
func (c *Credentials) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	return c.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// FindByVerificationToken looks an account up by the raw emailed token.
func (c *Credentials) FindByVerificationToken(ctx context.Context, token string) (model.Account, error) {
	return c.store.GetByVerificationToken(ctx, hashSecret(token))
}

// FindByResetToken looks an account up by the raw emailed token, ignoring expired windows.
func (c *Credentials) FindByResetToken(ctx context.Context, token string, now time.Time) (model.Account, error) {
	return c.store.GetByResetToken(ctx, hashSecret(token), now)
}

// ReplacePassword stores a new password and closes any pending reset window in the same write.
func (c *Credentials) ReplacePassword(ctx context.Context, id uuid.UUID, password string) (model.Account, error) {
	hash, err := c.hasher.Hash(password)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return c.Apply(ctx, id, model.AccountUpdate{PasswordHash: &hash, ClearResetToken: true})
}

// Update applies patch, hashing a new password if one is present.
func (c *Credentials) Update(ctx context.Context, id uuid.UUID, patch model.AccountPatch) (model.Account, error) {
	update := model.AccountUpdate{
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
		Phone:     patch.Phone,
		IsActive:  patch.IsActive,
		Role:      patch.Role,
	}
	if patch.Password != nil {
		hash, err := c.hasher.Hash(*patch.Password)
		if err != nil {
			return model.Account{}, fmt.Errorf("failed to hash password: %w", err)
		}
		update.PasswordHash = &hash
	}
	return c.Apply(ctx, id, update)
}

// Apply writes a store-level update.
func (c *Credentials) Apply(ctx context.Context, id uuid.UUID, update model.AccountUpdate) (model.Account, error) {
	account, err := c.store.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Account{}, err
		}
		return model.Account{}, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (c *Credentials) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return c.store.SoftDelete(ctx, id)
}

// ComparePassword returns model.ErrPasswordMismatch if candidate does not match.
func (c *Credentials) ComparePassword(account model.Account, candidate string) error {
	return c.hasher.Compare(account.PasswordHash, candidate)
}

// CompareDummy burns one hash comparison and always reports a mismatch.
// Login uses it for unknown emails so both failure paths cost the same.
func (c *Credentials) CompareDummy(candidate string) error {
	c.dummyOnce.Do(func() {
		hash, err := c.hasher.Hash(uuid.NewString())
		if err != nil {
			c.logger.Error("Credentials: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		c.dummyHash = hash
	})
	_ = c.hasher.Compare(c.dummyHash, candidate)
	return model.ErrPasswordMismatch
}
