package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	for _, pw := range []string{"secret1", "ćevapi-i-med", " spaced ", "x"} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)

		assert.NotEqual(t, pw, hash)
		assert.True(t, h.Verify(pw, hash), "password %q should verify", pw)
		assert.False(t, h.Verify(pw+"!", hash))
		assert.False(t, h.Verify("", hash))
	}
}

func TestHash_IsSalted(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("secret1", "not-a-bcrypt-hash"))
}

func TestNewPasswordHasher_CostBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultCost, NewPasswordHasher(0).Cost())
	assert.Equal(t, DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 12, NewPasswordHasher(12).Cost())

	hash, err := NewPasswordHasher(bcrypt.MinCost).Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHash_RejectsOverlongMultibytePassword(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	// 36 runes, 72 bytes: the largest accepted input
	_, err := h.Hash(strings.Repeat("č", 36))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("č", 40))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}
