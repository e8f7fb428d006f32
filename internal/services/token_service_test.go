package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenIssueAndVerify(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour, zap.NewNop())

	token, err := ts.Issue("u1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, email, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "alice@example.com", email)
}

func TestTokenVerifyExpired(t *testing.T) {
	ts := NewTokenService("test-secret", -time.Minute, zap.NewNop())

	token, err := ts.Issue("u1", "alice@example.com")
	require.NoError(t, err)

	_, _, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestTokenVerifyInvalid(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour, zap.NewNop())

	_, _, err := ts.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	// token signed with a different secret
	other := NewTokenService("other-secret", time.Hour, zap.NewNop())
	token, err := other.Issue("u1", "alice@example.com")
	require.NoError(t, err)

	_, _, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
