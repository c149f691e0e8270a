package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("OPENAI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.CompletionHistory)
	assert.Equal(t, 10*time.Second, cfg.IdentityTimeout)
	assert.Equal(t, 15*time.Second, cfg.ProfileTimeout)
	assert.True(t, cfg.RequireEmailVerification)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("OPENAI_API_KEY", "key")
	t.Setenv("COMPLETION_HISTORY_WINDOW", "5")
	t.Setenv("IDENTITY_TIMEOUT", "12s")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "off")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.CompletionHistory)
	assert.Equal(t, 12*time.Second, cfg.IdentityTimeout)
	assert.False(t, cfg.RequireEmailVerification)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
}

func TestLoadRejectsMissingProductionSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestValidateRejectsNonPositiveWindow(t *testing.T) {
	cfg := &Config{
		CompletionHistory: 0,
		IdentityTimeout:   time.Second,
		ProfileTimeout:    time.Second,
		StoreTimeout:      time.Second,
		CompletionTimeout: time.Second,
	}
	assert.Error(t, cfg.Validate())
}
