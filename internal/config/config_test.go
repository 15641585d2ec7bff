package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DBTypeMemory, cfg.Database.Type)
	assert.Equal(t, 15*time.Second, cfg.Server.PageCacheTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Database.Type = DBTypeMongo
	cfg.Auth.JWTSecret = ""
	cfg.Media.Backend = MediaS3

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "invalid port 0")
	assert.Contains(t, msg, "MONGO_URI")
	assert.Contains(t, msg, "JWT_SECRET")
	assert.Contains(t, msg, "S3_BUCKET")
}

func TestValidateRejectsDevelopmentSecret(t *testing.T) {
	cfg := Default()
	cfg.Database.Type = DBTypePostgres
	cfg.Database.URI = "postgresql://u:p@db:5432/yatube"
	require.Equal(t, DevelopmentSecret, cfg.Auth.JWTSecret)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set")

	cfg.Debug = true
	assert.NoError(t, cfg.Validate())

	cfg.Debug = false
	cfg.Auth.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())

	cfg.Auth.JWTSecret = DevelopmentSecret
	cfg.Database.Type = DBTypeMemory
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgresql://u:p@db:5432/yatube?sslmode=disable")
	t.Setenv("PAGE_CACHE_TTL", "30")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MEDIA_ROOT", "/tmp/media")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.PageCacheTTL)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "/tmp/media", cfg.Media.Root)
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yatube.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
  page_cache_ttl: 5s
database:
  type: memory
log:
  level: debug
`), 0o644))
	t.Setenv("PORT", "7001")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 5*time.Second, cfg.Server.PageCacheTTL)
	assert.Equal(t, DBTypeMemory, cfg.Database.Type)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestGetSSLModeFromURI(t *testing.T) {
	assert.Equal(t, "verify-full", getSSLModeFromURI("postgres://h/db?user=x&sslmode=verify-full"))
	assert.Equal(t, "require", getSSLModeFromURI("postgres://h/db"))
}
