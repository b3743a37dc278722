package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.test.yaml")
	yamlData := `
server:
  port: 9000
  env: production
database:
  driver: mysql
  host: db.internal
jwt:
  secret: from-file
messaging:
  notify_workers: 8
  notify_timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DM_DEEP_LINK_BASE", "https://angple.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "https://angple.com", cfg.Messaging.DeepLinkBase)
	assert.Equal(t, 8, cfg.Messaging.NotifyWorkers)
	assert.Equal(t, 2*time.Second, cfg.Messaging.NotifyTimeout)
	// untouched defaults survive
	assert.Equal(t, 5000, cfg.Messaging.MaxContentLength)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "jwt secret required")

	cfg.JWT.Secret = "s"
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	cfg.Messaging.NotifyWorkers = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Messaging.NotifyWorkers)
}
