package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/mocks"
	"github.com/dtroode/account-service/internal/model"
	"github.com/dtroode/account-service/internal/testutil"
)

func TestCredentials_Create(t *testing.T) {
	ctx := context.Background()
	store := &mocks.AccountStore{}
	hasher := &mocks.PasswordHasher{}

	token := "verify-me"
	hasher.On("Hash", "Passw0rd!").Return("hashed", nil).Once()
	store.On("Create", ctx, mock.MatchedBy(func(a model.Account) bool {
		return a.Email == "user@example.com" &&
			a.PasswordHash == "hashed" &&
			a.Role == model.RoleUser &&
			a.IsActive &&
			!a.EmailVerified &&
			a.VerificationTokenHash != nil && *a.VerificationTokenHash == hashSecret(token)
	})).Return(func(_ context.Context, a model.Account) (model.Account, error) {
		return a, nil
	}).Once()

	c := NewCredentials(store, hasher, testutil.MakeNoopLogger())

	account, err := c.Create(ctx, model.AccountDraft{
		Email:     "  User@Example.com ",
		Password:  "Passw0rd!",
		FirstName: "A",
		LastName:  "B",
	}, &token)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.NotEqual(t, "Passw0rd!", account.PasswordHash)
	store.AssertExpectations(t)
}

func TestCredentials_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := &mocks.AccountStore{}
	hasher := &mocks.PasswordHasher{}

	hasher.On("Hash", "Passw0rd!").Return("hashed", nil).Once()
	store.On("Create", ctx, mock.Anything).Return(model.Account{}, model.ErrDuplicateEmail).Once()

	c := NewCredentials(store, hasher, testutil.MakeNoopLogger())

	_, err := c.Create(ctx, model.AccountDraft{Email: "a@b.co", Password: "Passw0rd!"}, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindDuplicateEmail))
}

func TestCredentials_Create_EmptyPassword(t *testing.T) {
	c := NewCredentials(&mocks.AccountStore{}, &mocks.PasswordHasher{}, testutil.MakeNoopLogger())

	_, err := c.Create(context.Background(), model.AccountDraft{Email: "a@b.co"}, nil)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestCredentials_Create_HashError(t *testing.T) {
	hasher := &mocks.PasswordHasher{}
	hasher.On("Hash", "Passw0rd!").Return("", assert.AnError).Once()

	c := NewCredentials(&mocks.AccountStore{}, hasher, testutil.MakeNoopLogger())

	_, err := c.Create(context.Background(), model.AccountDraft{Email: "a@b.co", Password: "Passw0rd!"}, nil)
	require.ErrorIs(t, err, assert.AnError)
}

func TestCredentials_FindByEmail_Normalizes(t *testing.T) {
	ctx := context.Background()
	store := &mocks.AccountStore{}
	store.On("GetByEmail", ctx, "user@example.com").Return(model.Account{Email: "user@example.com"}, nil).Once()

	c := NewCredentials(store, &mocks.PasswordHasher{}, testutil.MakeNoopLogger())

	account, err := c.FindByEmail(ctx, " USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", account.Email)
}

func TestCredentials_Update_HashesPassword(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	store := &mocks.AccountStore{}
	hasher := &mocks.PasswordHasher{}

	newPassword := "N3wPassw0rd!"
	firstName := "Ann"
	hasher.On("Hash", newPassword).Return("new-hash", nil).Once()
	store.On("Update", ctx, id, mock.MatchedBy(func(u model.AccountUpdate) bool {
		return u.PasswordHash != nil && *u.PasswordHash == "new-hash" &&
			u.FirstName != nil && *u.FirstName == firstName
	})).Return(model.Account{ID: id, FirstName: firstName}, nil).Once()

	c := NewCredentials(store, hasher, testutil.MakeNoopLogger())

	account, err := c.Update(ctx, id, model.AccountPatch{FirstName: &firstName, Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, firstName, account.FirstName)
	store.AssertExpectations(t)
}

func TestCredentials_Apply_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	store := &mocks.AccountStore{}
	store.On("Update", ctx, id, mock.Anything).Return(model.Account{}, model.ErrNotFound).Once()

	c := NewCredentials(store, &mocks.PasswordHasher{}, testutil.MakeNoopLogger())

	verified := true
	_, err := c.Apply(ctx, id, model.AccountUpdate{EmailVerified: &verified})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCredentials_ReplacePassword_ClearsReset(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	store := &mocks.AccountStore{}
	hasher := &mocks.PasswordHasher{}

	hasher.On("Hash", "N3wPassw0rd!").Return("new-hash", nil).Once()
	store.On("Update", ctx, id, mock.MatchedBy(func(u model.AccountUpdate) bool {
		return u.ClearResetToken && u.PasswordHash != nil && *u.PasswordHash == "new-hash"
	})).Return(model.Account{ID: id}, nil).Once()

	c := NewCredentials(store, hasher, testutil.MakeNoopLogger())

	_, err := c.ReplacePassword(ctx, id, "N3wPassw0rd!")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCredentials_TokenLookupsUseDigest(t *testing.T) {
	ctx := context.Background()
	store := &mocks.AccountStore{}

	store.On("GetByVerificationToken", ctx, hashSecret("v")).Return(model.Account{}, nil).Once()
	store.On("GetByResetToken", ctx, hashSecret("r"), mock.Anything).Return(model.Account{}, model.ErrNotFound).Once()

	c := NewCredentials(store, &mocks.PasswordHasher{}, testutil.MakeNoopLogger())

	_, err := c.FindByVerificationToken(ctx, "v")
	require.NoError(t, err)
	_, err = c.FindByResetToken(ctx, "r", c.now())
	require.ErrorIs(t, err, model.ErrNotFound)
	store.AssertExpectations(t)
}

func TestCredentials_ComparePassword(t *testing.T) {
	hasher := &mocks.PasswordHasher{}
	hasher.On("Compare", "hash", "good").Return(nil).Once()
	hasher.On("Compare", "hash", "bad").Return(model.ErrPasswordMismatch).Once()

	c := NewCredentials(&mocks.AccountStore{}, hasher, testutil.MakeNoopLogger())
	account := model.Account{PasswordHash: "hash"}

	require.NoError(t, c.ComparePassword(account, "good"))
	require.ErrorIs(t, c.ComparePassword(account, "bad"), model.ErrPasswordMismatch)
}

func TestCredentials_CompareDummy(t *testing.T) {
	hasher := &mocks.PasswordHasher{}
	hasher.On("Hash", mock.Anything).Return("dummy", nil).Once()
	hasher.On("Compare", "dummy", mock.Anything).Return(model.ErrPasswordMismatch).Twice()

	c := NewCredentials(&mocks.AccountStore{}, hasher, testutil.MakeNoopLogger())

	require.ErrorIs(t, c.CompareDummy("anything"), model.ErrPasswordMismatch)
	require.ErrorIs(t, c.CompareDummy("again"), model.ErrPasswordMismatch)
	hasher.AssertExpectations(t)
}
