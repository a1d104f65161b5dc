package auth

import (
	"testing"
	"time"

	apperrors "skybook/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newManager(now time.Time) *TokenManager {
	m := NewTokenManager(Config{Secret: "test-secret", Issuer: "skybook", TTL: time.Hour})
	m.now = func() time.Time { return now }
	return m
}

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	m := newManager(now)

	raw, expiresAt, err := m.Issue(42, "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := m.Parse(raw)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsExpired(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	raw, _, err := newManager(issuedAt).Issue(1, "user")
	require.NoError(t, err)

	_, err = newManager(time.Now()).Parse(raw)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	other := NewTokenManager(Config{Secret: "another", Issuer: "skybook", TTL: time.Hour})
	raw, _, err := other.Issue(1, "user")
	require.NoError(t, err)

	_, err = newManager(time.Now()).Parse(raw)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = newManager(time.Now()).Parse("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
