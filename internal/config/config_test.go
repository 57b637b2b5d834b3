package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/zenith")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("DIGEST_TIME", "")
	t.Setenv("COMPLETE_ATTEMPTS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "07:00", cfg.DigestTime)
	assert.Equal(t, 0, cfg.CompleteAttempts)
}

func TestLoadRequiredValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/zenith")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestParsePositiveInt(t *testing.T) {
	assert.Equal(t, 7, parsePositiveInt("7"))
	assert.Equal(t, 0, parsePositiveInt("0"))
	assert.Equal(t, 0, parsePositiveInt("-3"))
	assert.Equal(t, 0, parsePositiveInt("many"))
}
