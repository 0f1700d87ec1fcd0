package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("MONGO_DB", "")

	cfg := LoadServer()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Equal(t, "skillshare", cfg.DatabaseName)
}

func TestLoadServerFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PUBLIC_URL", "https://api.example.com/")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := LoadServer()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.PublicURL)
	assert.True(t, cfg.CookieSecure)
}

func TestServerRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	cfg := LoadServer()
	assert.Equal(t, Development, cfg.Environment)
	assert.NoError(t, cfg.Validate())

	t.Setenv("APP_ENV", "Production")
	cfg = LoadServer()
	assert.Equal(t, "production", cfg.Environment)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set")

	t.Setenv("JWT_SECRET", "s3cret")
	assert.NoError(t, LoadServer().Validate())
}

func TestLoadClientDurations(t *testing.T) {
	t.Setenv("SKILLSHARE_POLL_INTERVAL", "5s")
	t.Setenv("SKILLSHARE_TIMEOUT", "nonsense")
	t.Setenv("SKILLSHARE_DATA_DIR", "/tmp/skillshare-test")

	cfg := LoadClient()

	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/skillshare-test", cfg.DataDir)
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("SKILLSHARE_FROM_FILE=file\nSKILLSHARE_SET=file\n"), 0o600))
	t.Setenv("SKILLSHARE_SET", "env")
	t.Setenv("SKILLSHARE_FROM_FILE", "")
	os.Unsetenv("SKILLSHARE_FROM_FILE")

	Load(file)

	assert.Equal(t, "file", os.Getenv("SKILLSHARE_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("SKILLSHARE_SET"))
}
