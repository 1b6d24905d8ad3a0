package auth_test

import (
	"testing"
	"time"

	"github.com/lorrc/ticket-relay/internal/auth"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	token, err := tm.GenerateToken(42, true, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID(42), claims.AccountID)
	assert.True(t, claims.Admin)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	token, err := tm.GenerateToken(42, false, -time.Minute)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	other := auth.NewTokenManager("other-secret")

	token, err := tm.GenerateToken(42, false, time.Minute)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	_, err := tm.ValidateToken("not.a.token")
	assert.Error(t, err)
}
