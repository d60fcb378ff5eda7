package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	t.Setenv("OBJECTKIT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "badger", cfg.Storage.Backend)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objectkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  rest_port: 9100
storage:
  backend: redis
  redis_addr: localhost:6379
cache:
  enabled: true
  invalidation_url: nats://localhost:4222
auth:
  enabled: true
  admin_password: secret-password
logging:
  level: debug
`), 0644))
	t.Setenv("OBJECTKIT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.GetRESTPort())
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "OBJECTKIT", cfg.EventBus.Stream)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "nats://localhost:4222", cfg.Cache.InvalidationURL)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "admin", cfg.Auth.AdminUser)
	assert.Equal(t, 24*60, cfg.Auth.TokenTTLMinutes)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestRESTPortFallback(t *testing.T) {
	s := ServerConfig{}

	t.Setenv("OBJECTKIT_REST_PORT", "")
	assert.Equal(t, 8090, s.GetRESTPort())

	t.Setenv("OBJECTKIT_REST_PORT", "9200")
	assert.Equal(t, 9200, s.GetRESTPort())

	t.Setenv("OBJECTKIT_REST_PORT", "not-a-port")
	assert.Equal(t, 8090, s.GetRESTPort())
}

func TestJWTSecretFallback(t *testing.T) {
	a := AuthConfig{}

	t.Setenv("OBJECTKIT_JWT_SECRET", "from-env")
	assert.Equal(t, "from-env", a.GetJWTSecret())

	a.JWTSecret = "from-config"
	assert.Equal(t, "from-config", a.GetJWTSecret())
}
