package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	secret := "test-secret"

	token, err := IssueToken(secret, "user-7", "field_tracking", time.Hour)
	require.NoError(t, err)

	claims, err := NewVerifier(secret).Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.UserID)
	assert.Equal(t, "field_tracking", claims.Role)
}

func TestVerifier_WrongSecret(t *testing.T) {
	token, err := IssueToken("secret-a", "user-1", "citizen", time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("secret-b").Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifier_ExpiredToken(t *testing.T) {
	token, err := IssueToken("secret", "user-1", "citizen", -time.Minute)
	require.NoError(t, err)

	_, err = NewVerifier("secret").Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifier_EmptyToken(t *testing.T) {
	_, err := NewVerifier("secret").Verify(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}
