package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKTRACK_API_URL",
		"TASKTRACK_TIMEOUT",
		"TASKTRACK_REFRESH_TIMEOUT",
		"TASKTRACK_CREDENTIAL_STORE",
		"TASKTRACK_LOG_ENCODING",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := New(dir)
	require.NoError(t, err)

	require.Equal(t, dir, cfg.Dir)
	require.Equal(t, "http://localhost:3001/api", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, 15*time.Second, cfg.API.RefreshTimeout)
	require.Equal(t, StoreFile, cfg.CredentialStore)
	require.Equal(t, "console", cfg.LogEncoding)
}

func TestNew_YAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, SettingsFile, `
api:
  base_url: "https://tasks.example.com/api"
  timeout: "3s"
credential_store: "bolt"
`)

	cfg, err := New(dir)
	require.NoError(t, err)
	require.Equal(t, "https://tasks.example.com/api", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, 15*time.Second, cfg.API.RefreshTimeout)
	require.Equal(t, StoreBolt, cfg.CredentialStore)
}

func TestNew_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, SettingsFile, `
api:
  base_url: "https://yaml.example.com/api"
`)
	t.Setenv("TASKTRACK_API_URL", "https://env.example.com/api")

	cfg, err := New(dir)
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com/api", cfg.API.BaseURL)
}

func TestNew_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, EnvFile, "TASKTRACK_TIMEOUT=7s\n")
	t.Cleanup(func() { _ = os.Unsetenv("TASKTRACK_TIMEOUT") })

	cfg, err := New(dir)
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, cfg.API.Timeout)
}

func TestNew_BrokenDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, EnvFile, "TASKTRACK-TIMEOUT=7s\n")

	_, err := New(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), EnvFile)
}

func TestNew_InvalidStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKTRACK_CREDENTIAL_STORE", "keychain")

	_, err := New(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "credential_store")
}

func TestNew_BrokenYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, SettingsFile, "api: [unclosed\n")

	_, err := New(dir)
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	cfg := &Config{Dir: "/cfg"}
	require.Equal(t, "/cfg/token.json", cfg.TokenPath())
	require.Equal(t, "/cfg/credentials.db", cfg.CredentialsDBPath())
	require.Equal(t, "/cfg/oauth_client.json", cfg.GoogleClientPath())
	require.Equal(t, "/cfg/google_token.json", cfg.GoogleTokenPath())
	require.Equal(t, "/cfg/config.yml", cfg.SettingsPath())
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	require.Equal(t, filepath.Join("/xdg", AppName), DefaultConfigDir())
}
