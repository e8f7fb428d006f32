package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, "uploads", cfg.Storage.Dir)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadSize)
	assert.Equal(t, "uploads/audit.log", cfg.Storage.AuditLogPath)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"server": {"port": "9090"},
		"security": {"token_secret": "file-secret"},
		"database": {"enabled": true, "host": "db.internal"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.Security.TokenSecret)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)

	// values absent from the file keep their defaults
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "uploads", cfg.Storage.Dir)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("STORAGE_DIR", "/data/uploads")
	t.Setenv("MAX_UPLOAD_SIZE", "1048576")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "7777", cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Security.TokenSecret)
	assert.Equal(t, 30*time.Minute, cfg.Security.TokenTTL)
	assert.Equal(t, "/data/uploads", cfg.Storage.Dir)
	assert.Equal(t, int64(1<<20), cfg.Storage.MaxUploadSize)
}

func TestEnvOverridesIgnoreMalformed(t *testing.T) {
	t.Setenv("JWT_TTL", "not-a-duration")
	t.Setenv("MAX_UPLOAD_SIZE", "lots")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadSize)
}
