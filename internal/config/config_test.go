package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mailguard/internal/config"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "config.yml", "environment: production\n"))
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.False(t, cfg.Database.Enabled)
	require.Equal(t, "realm-management", cfg.Auth.AdminClient)
	require.Equal(t, "realm-admin", cfg.Auth.AdminRole)
	require.Equal(t, "master", cfg.Auth.Realm)
	require.Equal(t, "auto", cfg.Source.Format)
	require.Equal(t, 30*time.Second, cfg.Source.Timeout)
	require.True(t, cfg.Refresh.OnStartup)
	require.Equal(t, 24*time.Hour, cfg.Refresh.Interval)
	require.False(t, cfg.Validation.MatchSubdomains)
}

func TestLoad_File(t *testing.T) {
	keyPath := writeFile(t, "key.pem", "-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----\n")
	cfg, err := config.Load(writeFile(t, "config.yml", `
logLevel: debug
auth:
  realm: acme
  publicKeyFile: `+keyPath+`
  serviceAccountClients: [admin-cli, ops-bot]
source:
  urls:
    - https://lists.example/a.txt
    - https://lists.example/b.json
  format: text
refresh:
  interval: 6h
validation:
  matchSubdomains: true
`))
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "acme", cfg.Auth.Realm)
	require.Contains(t, cfg.Auth.PublicKey, "BEGIN PUBLIC KEY")
	require.Equal(t, []string{"admin-cli", "ops-bot"}, cfg.Auth.ServiceAccountClients)
	require.Len(t, cfg.Source.URLs, 2)
	require.Equal(t, "text", cfg.Source.Format)
	require.Equal(t, 6*time.Hour, cfg.Refresh.Interval)
	require.True(t, cfg.Validation.MatchSubdomains)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_REALM", "from-env")
	t.Setenv("SOURCE_URLS", "https://a.example/x,https://b.example/y")

	cfg, err := config.Load(writeFile(t, "config.yml", "auth:\n  realm: from-file\n"))
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.Realm)
	require.Equal(t, []string{"https://a.example/x", "https://b.example/y"}, cfg.Source.URLs)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "config.yml", "auth:\n  publicKeyFile: /nonexistent/key.pem\n"))
	require.Error(t, err)
}
