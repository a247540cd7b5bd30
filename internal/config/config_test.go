package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaultsAndAppDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "api_base_url: http://localhost:8080/api/\nlog_file: logs/client.log\n")

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "logs", "client.log"), cfg.LogFile)
	assert.Equal(t, DefaultNoticeDuration, cfg.NoticeDuration)
	assert.Equal(t, DefaultAdminPrivilege, cfg.AdminPrivilege)
	assert.Equal(t, StorageBadger, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(dir, "data", "session"), cfg.Storage.Path)
	assert.Equal(t, "trainsys:", cfg.Storage.KeyPrefix)
	assert.DirExists(t, filepath.Join(dir, "logs"))
	assert.DirExists(t, cfg.Storage.Path)
}

func TestLoadParsesDurationsAndStorage(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
api_base_url: http://example.test/api
log_file: client.log
log_level: DEBUG
notice_duration: 1500ms
admin_privilege: 5
storage:
  driver: memory
`)

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1500*time.Millisecond, cfg.NoticeDuration)
	assert.Equal(t, 5, cfg.AdminPrivilege)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "api_base_url: http://yaml.test/api\nlog_file: client.log\n")
	t.Setenv("TRAINSYS_API_BASE_URL", "http://env.test/api")
	t.Setenv("TRAINSYS_STORAGE_DRIVER", "memory")

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "http://env.test/api", cfg.APIBaseURL)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log_file: client.log\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRAINSYS_API_BASE_URL=http://dotenv.test/api\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TRAINSYS_API_BASE_URL") })

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.test/api", cfg.APIBaseURL)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing base url", body: "log_file: client.log\n"},
		{name: "missing log file", body: "api_base_url: http://x/api\n"},
		{name: "bad level", body: "api_base_url: http://x/api\nlog_file: c.log\nlog_level: trace\n"},
		{name: "bad driver", body: "api_base_url: http://x/api\nlog_file: c.log\nstorage:\n  driver: sqlite\n"},
		{name: "redis without url", body: "api_base_url: http://x/api\nlog_file: c.log\nstorage:\n  driver: redis\n"},
		{name: "broken yaml", body: "api_base_url: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, tt.body)

			_, err := Load(path, dir)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigFailed))
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, path, cfgErr.Path)
		})
	}
}

func TestLoadMissingFileUnwrapsCause(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "absent.yaml"), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestShippedConfigHasNoRequestTimeout(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.yaml"), t.TempDir())
	require.NoError(t, err)

	assert.Zero(t, cfg.RequestTimeout)
	assert.Equal(t, 3*time.Second, cfg.NoticeDuration)
}
