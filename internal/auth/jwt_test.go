package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	secret := []byte("test-secret")
	token, issued, err := GenerateJWT("user-1", time.Hour, secret)
	require.NoError(t, err)

	got, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, issued.TokenID, got.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateJWT("user-1", time.Hour, []byte("a"))
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("b"))
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, _, err := GenerateJWT("user-1", -time.Minute, []byte("a"))
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("a"))
	assert.Error(t, err)
}

func TestGenerateRejectsEmptyUser(t *testing.T) {
	_, _, err := GenerateJWT("", time.Hour, []byte("a"))
	assert.Error(t, err)
}
