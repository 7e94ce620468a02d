//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/account-service/internal/model"
	repo "github.com/dtroode/account-service/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "accounts_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/accounts_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newAccount(email string) model.Account {
	now := time.Now()
	return model.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$04$abcdefghijklmnopqrstuv",
		FirstName:    "A",
		LastName:     "B",
		IsActive:     true,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAccountRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	accounts := repo.NewAccountRepository(conn)
	require.NoError(t, accounts.Ping(ctx))

	a := newAccount("Life@Example.com")
	verification := "v-hash"
	a.VerificationTokenHash = &verification

	saved, err := accounts.Create(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "life@example.com", saved.Email)

	_, err = accounts.Create(ctx, newAccount("life@EXAMPLE.com"))
	require.ErrorIs(t, err, model.ErrDuplicateEmail)

	byEmail, err := accounts.GetByEmail(ctx, "LIFE@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	byToken, err := accounts.GetByVerificationToken(ctx, verification)
	require.NoError(t, err)
	assert.Equal(t, a.ID, byToken.ID)

	verified := true
	updated, err := accounts.Update(ctx, a.ID, model.AccountUpdate{EmailVerified: &verified, ClearVerificationToken: true})
	require.NoError(t, err)
	assert.True(t, updated.EmailVerified)
	assert.Nil(t, updated.VerificationTokenHash)

	resetHash := "r-hash"
	expires := time.Now().Add(10 * time.Minute)
	_, err = accounts.Update(ctx, a.ID, model.AccountUpdate{ResetTokenHash: &resetHash, ResetExpires: &expires})
	require.NoError(t, err)

	_, err = accounts.GetByResetToken(ctx, resetHash, time.Now())
	require.NoError(t, err)
	_, err = accounts.GetByResetToken(ctx, resetHash, expires.Add(time.Second))
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, accounts.SoftDelete(ctx, a.ID))
	_, err = accounts.GetByID(ctx, a.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
	require.ErrorIs(t, accounts.SoftDelete(ctx, a.ID), model.ErrNotFound)

	// The email is free again once the holder is soft-deleted.
	_, err = accounts.Create(ctx, newAccount("life@example.com"))
	require.NoError(t, err)
}

func TestAccountRepository_List(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	accounts := repo.NewAccountRepository(conn)
	for i := 0; i < 3; i++ {
		a := newAccount(fmt.Sprintf("list%d@search.test", i))
		a.FirstName = fmt.Sprintf("Lister%d", i)
		_, err := accounts.Create(ctx, a)
		require.NoError(t, err)
	}

	page, total, err := accounts.List(ctx, model.AccountFilter{
		Page: 1, Limit: 2, SortBy: model.SortByEmail, SortDesc: true, Search: "search.test",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "list2@search.test", page[0].Email)
}

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	accounts := repo.NewAccountRepository(conn)
	tokens := repo.NewRefreshTokenRepository(conn)

	owner, err := accounts.Create(ctx, newAccount("tokens@example.com"))
	require.NoError(t, err)

	now := time.Now()
	rt := model.RefreshToken{
		JTI:       uuid.NewString(),
		UserID:    owner.ID,
		TokenHash: []byte("hash"),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, tokens.Create(ctx, rt))

	got, err := tokens.GetByJTI(ctx, rt.JTI)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.UserID)
	assert.Nil(t, got.RevokedAt)

	require.NoError(t, tokens.Revoke(ctx, rt.JTI, time.Now()))
	require.ErrorIs(t, tokens.Revoke(ctx, rt.JTI, time.Now()), model.ErrTokenRevoked)
	require.ErrorIs(t, tokens.Revoke(ctx, "missing", time.Now()), model.ErrNotFound)
	got, err = tokens.GetByJTI(ctx, rt.JTI)
	require.NoError(t, err)
	assert.NotNil(t, got.RevokedAt)

	n, err := tokens.RevokeAllByUser(ctx, owner.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = tokens.GetByJTI(ctx, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
}
