package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewManager_EmptySecret(t *testing.T) {
	_, err := NewManager("")
	require.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m, err := NewManager("s3cret")
	require.NoError(t, err)

	tok, err := m.Issue(Identity{UserID: 7, Email: "a@b.com", Role: user.RoleUser})
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)

	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, user.RoleUser, claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.Equal(t, Identity{UserID: 7, Email: "a@b.com", Role: user.RoleUser}, claims.Identity())
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	issuer, err := NewManager("s3cret", WithClock(fixedClock(issued)))
	require.NoError(t, err)
	tok, err := issuer.Issue(Identity{UserID: 1, Email: "a@b.com", Role: user.RoleUser})
	require.NoError(t, err)

	verifier, err := NewManager("s3cret", WithClock(fixedClock(issued.Add(TokenTTL+time.Minute))))
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_StillValidBeforeExpiry(t *testing.T) {
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	issuer, _ := NewManager("s3cret", WithClock(fixedClock(issued)))
	tok, err := issuer.Issue(Identity{UserID: 1, Email: "a@b.com", Role: user.RoleManager})
	require.NoError(t, err)

	verifier, _ := NewManager("s3cret", WithClock(fixedClock(issued.Add(TokenTTL-time.Minute))))
	claims, err := verifier.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, claims.Role)
}

func TestVerify_WrongSecret(t *testing.T) {
	a, _ := NewManager("secret-a")
	b, _ := NewManager("secret-b")

	tok, err := a.Issue(Identity{UserID: 1, Email: "a@b.com", Role: user.RoleUser})
	require.NoError(t, err)

	_, err = b.Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	m, _ := NewManager("s3cret")

	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := m.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestVerify_RejectsOtherAlgorithm(t *testing.T) {
	m, _ := NewManager("s3cret")

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: 1, Email: "a@b.com", Role: user.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = m.Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsUnknownRole(t *testing.T) {
	m, _ := NewManager("s3cret")

	raw, err := m.Issue(Identity{UserID: 1, Email: "a@b.com", Role: "ROOT"})
	require.NoError(t, err)

	_, err = m.Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsMissingUserID(t *testing.T) {
	m, _ := NewManager("s3cret")

	raw, err := m.Issue(Identity{Email: "a@b.com", Role: user.RoleUser})
	require.NoError(t, err)

	_, err = m.Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("cookie wins over header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/hives", nil)
		r.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")

		got, err := TokenFromRequest(r, "token")
		require.NoError(t, err)
		assert.Equal(t, "from-cookie", got)
	})

	t.Run("bearer fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/hives", nil)
		r.Header.Set("Authorization", "bearer abc")

		got, err := TokenFromRequest(r, "token")
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("none", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/hives", nil)
		r.Header.Set("Authorization", "Basic xyz")

		_, err := TokenFromRequest(r, "token")
		require.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("empty bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/hives", nil)
		r.Header.Set("Authorization", "Bearer   ")

		_, err := TokenFromRequest(r, "token")
		require.ErrorIs(t, err, ErrNoToken)
	})
}
