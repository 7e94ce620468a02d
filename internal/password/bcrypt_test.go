package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/account-service/internal/model"
)

func TestBcrypt_HashAndCompare(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("Test123!@#")
	require.NoError(t, err)
	assert.NotEqual(t, "Test123!@#", hash)

	assert.NoError(t, h.Compare(hash, "Test123!@#"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), model.ErrPasswordMismatch)
}

func TestBcrypt_LongPasswords(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{name: "100 ascii characters", password: "Aa1!" + strings.Repeat("x", 96)},
		{name: "128 ascii characters", password: "Aa1!" + strings.Repeat("y", 124)},
		{name: "multibyte over 72 bytes", password: "Aa1!" + strings.Repeat("ж", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)

			assert.NoError(t, h.Compare(hash, tt.password))
			// a shared 72-byte prefix must not be enough
			assert.ErrorIs(t, h.Compare(hash, tt.password[:72]), model.ErrPasswordMismatch)
			assert.ErrorIs(t, h.Compare(hash, tt.password+"z"), model.ErrPasswordMismatch)
		})
	}
}

func TestBcrypt_SaltedHashesDiffer(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcrypt_CompareMalformedHash(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	err := h.Compare("not-a-hash", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrPasswordMismatch)
}

func TestNewBcrypt_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(1).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(99).Cost())
	assert.Equal(t, 12, NewBcrypt(12).Cost())
}
