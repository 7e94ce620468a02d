package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

// ErrStorageDisabled is returned by avatar operations when no object storage is configured.
var ErrStorageDisabled = errors.New("avatar storage disabled")

// Accounts serves administrative account management.
type Accounts struct {
	credentials *Credentials
	tokens      *TokenService
	storage     model.Storage
	logger      *logger.Logger
}

// NewAccounts creates Accounts. storage may be nil, which disables avatars.
func NewAccounts(credentials *Credentials, tokens *TokenService, storage model.Storage, logger *logger.Logger) *Accounts {
	return &Accounts{
		credentials: credentials,
		tokens:      tokens,
		storage:     storage,
		logger:      logger,
	}
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// List returns one page of accounts. Out-of-range paging values fall back to defaults.
func (s *Accounts) List(ctx context.Context, filter model.AccountFilter) (model.AccountPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.SortBy == "" {
		filter.SortBy = model.SortByCreatedAt
	}

	accounts, total, err := s.credentials.store.List(ctx, filter)
	if err != nil {
		return model.AccountPage{}, fmt.Errorf("failed to list accounts: %w", err)
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit

	return model.AccountPage{
		Accounts: accounts,
		Pagination: model.Pagination{
			CurrentPage:  filter.Page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: filter.Limit,
		},
	}, nil
}

func (s *Accounts) Get(ctx context.Context, id uuid.UUID) (model.Account, error) {
	account, err := s.credentials.FindByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Account{}, apierror.NewErrNotFound("User")
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Create adds an account on behalf of an administrator. No verification email is sent.
func (s *Accounts) Create(ctx context.Context, draft model.AccountDraft) (model.Account, error) {
	account, err := s.credentials.Create(ctx, draft, nil)
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Info("Accounts service: account created",
		"account_id", account.ID.String(),
		"role", string(account.Role))

	return account, nil
}

// Update applies patch on behalf of actor. Only a super admin may change roles.
// Deactivating an account revokes its refresh tokens.
func (s *Accounts) Update(ctx context.Context, actor model.Account, id uuid.UUID, patch model.AccountPatch) (model.Account, error) {
	if patch.Role != nil {
		if !actor.HasRole(model.RoleSuperAdmin) {
			return model.Account{}, apierror.NewErrForbidden()
		}
		if !patch.Role.Valid() {
			return model.Account{}, apierror.NewErrValidation(map[string]string{"role": "Role must be one of user, admin, super_admin"})
		}
	}

	account, err := s.credentials.Update(ctx, id, patch)
	if errors.Is(err, model.ErrNotFound) {
		return model.Account{}, apierror.NewErrNotFound("User")
	}
	if err != nil {
		return model.Account{}, err
	}

	if patch.IsActive != nil && !*patch.IsActive {
		if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
			s.logger.Error("Accounts service: failed to revoke sessions of deactivated account",
				"account_id", id.String(),
				"error", err.Error())
		}
	}

	s.logger.Info("Accounts service: account updated",
		"account_id", id.String(),
		"actor_id", actor.ID.String())

	return account, nil
}

func (s *Accounts) Delete(ctx context.Context, actor model.Account, id uuid.UUID) error {
	err := s.credentials.SoftDelete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NewErrNotFound("User")
	}
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
		s.logger.Error("Accounts service: failed to revoke sessions of deleted account",
			"account_id", id.String(),
			"error", err.Error())
	}

	s.logger.Info("Accounts service: account deleted",
		"account_id", id.String(),
		"actor_id", actor.ID.String())

	return nil
}

// AvatarsEnabled reports whether object storage is configured.
func (s *Accounts) AvatarsEnabled() bool {
	return s.storage != nil
}

// SetAvatar uploads an avatar for id and records its key.
func (s *Accounts) SetAvatar(ctx context.Context, id uuid.UUID, body io.Reader, size int64, contentType string) (model.Account, error) {
	if s.storage == nil {
		return model.Account{}, ErrStorageDisabled
	}

	key := avatarKey(id)
	if err := s.storage.Upload(ctx, key, body, size, contentType); err != nil {
		return model.Account{}, fmt.Errorf("failed to upload avatar: %w", err)
	}

	account, err := s.credentials.Apply(ctx, id, model.AccountUpdate{AvatarKey: &key})
	if errors.Is(err, model.ErrNotFound) {
		return model.Account{}, apierror.NewErrUserGone()
	}
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Debug("Accounts service: avatar stored",
		"account_id", id.String(),
		"size", size)

	return account, nil
}

// GetAvatar opens the stored avatar of id. The caller closes the body.
func (s *Accounts) GetAvatar(ctx context.Context, id uuid.UUID) (model.Object, error) {
	if s.storage == nil {
		return model.Object{}, ErrStorageDisabled
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return model.Object{}, err
	}
	if account.AvatarKey == nil {
		return model.Object{}, apierror.NewErrNotFound("Avatar")
	}

	obj, err := s.storage.Download(ctx, *account.AvatarKey)
	if errors.Is(err, model.ErrNotFound) {
		return model.Object{}, apierror.NewErrNotFound("Avatar")
	}
	if err != nil {
		return model.Object{}, fmt.Errorf("failed to download avatar: %w", err)
	}
	return obj, nil
}

func avatarKey(id uuid.UUID) string {
	return "avatars/" + id.String()
}
