package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("secret", 42, "user@syncrio.test", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "user@syncrio.test", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateTokenFailures(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("secret", 1, "", time.Hour)
		require.NoError(t, err)

		_, err = ValidateToken("other", token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken("secret", 1, "", -time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken("secret", token)
		assert.Error(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		token, err := GenerateToken("secret", 0, "", time.Hour)
		require.NoError(t, err)

		_, err = ValidateToken("secret", token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestStateAndSessionTokensAreNotInterchangeable(t *testing.T) {
	state, err := GenerateStateToken("secret", 42, 10*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateStateToken("secret", state)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)

	_, err = ValidateToken("secret", state)
	assert.Error(t, err)

	session, err := GenerateToken("secret", 42, "", time.Hour)
	require.NoError(t, err)
	_, err = ValidateStateToken("secret", session)
	assert.Error(t, err)
}

func TestGenerateRandomKey(t *testing.T) {
	a, err := GenerateRandomKey(16)
	require.NoError(t, err)
	b, err := GenerateRandomKey(16)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, apiKeyPrefix))
	assert.NotEqual(t, a, b)
}
