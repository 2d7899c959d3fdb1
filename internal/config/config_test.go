package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvConfigFile, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "opptrack.yaml", `
store_path: /var/lib/opptrack/store.db
audit_path: /var/lib/opptrack/audit.db
log_level: debug
actor: mailbox-sync
timezones:
  PT: -8
  IST: 5
`)
	t.Setenv("OPPTRACK_LOG_LEVEL", "warn")
	t.Setenv("OPPTRACK_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/opptrack/store.db", cfg.StorePath)
	assert.Equal(t, "/var/lib/opptrack/audit.db", cfg.AuditPath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mailbox-sync", cfg.Actor)
	assert.Equal(t, map[string]int{"PT": -8, "IST": 5}, cfg.Timezones)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "c.yaml", "store_path: from-env.db\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.StorePath)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "OPPTRACK_AUDIT_PATH=dotenv-audit.db\n")
	t.Setenv(EnvConfigFile, "")
	// godotenv writes into the process environment; restore on cleanup.
	t.Setenv("OPPTRACK_AUDIT_PATH", "")
	require.NoError(t, os.Unsetenv("OPPTRACK_AUDIT_PATH"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-audit.db", cfg.AuditPath)
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvConfigFile, "")
	t.Setenv("OPPTRACK_LOG_FORMAT", "xml")

	_, err := Load("")
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "LogFormat", verrs[0].Field())
}

func TestValidate_TimezoneRange(t *testing.T) {
	cfg := Default()
	cfg.Timezones = map[string]int{"XT": 20}
	assert.Error(t, cfg.Validate())

	cfg.Timezones = map[string]int{"XT": -3}
	assert.NoError(t, cfg.Validate())
}

func TestOffsets_OverridesApply(t *testing.T) {
	cfg := Default()
	cfg.Timezones = map[string]int{"pt": -8}

	resolver := cfg.Offsets()
	h, ok := resolver.Offset("PT")
	require.True(t, ok)
	assert.Equal(t, -8, h)

	h, ok = resolver.Offset("ET")
	require.True(t, ok)
	assert.Equal(t, -4, h)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
