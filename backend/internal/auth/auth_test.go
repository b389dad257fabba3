package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	tokens := NewTokens([]byte("super-secret"), time.Hour)

	tok, err := tokens.Issue("user-123")
	require.NoError(t, err)

	got, err := tokens.UserID(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestUserID_Expired(t *testing.T) {
	t.Parallel()

	tokens := NewTokens([]byte("secret"), time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := tokens.Issue("u1")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.UserID(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestUserID_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokens([]byte("right-secret"), time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokens([]byte("wrong-secret"), time.Hour).UserID(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserID_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokens([]byte("k"), time.Hour).UserID("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserID_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u3"}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokens(secret, time.Hour).UserID(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserID_MissingSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokens(secret, time.Hour).UserID(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	t.Parallel()

	p := NewPasswords(bcrypt.MinCost)
	hash, err := p.Hash("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, p.Matches(hash, "hunter22"))
	assert.False(t, p.Matches(hash, "hunter23"))
	assert.False(t, p.Matches("not-a-hash", "hunter22"))
}
