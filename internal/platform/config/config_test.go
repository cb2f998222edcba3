package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_DRIVER", "DATABASE_URL", "PORT", "LOG_LEVEL", "CORS_ALLOW_ORIGINS"} {
		if v, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, v) })
		}
	}
}

func TestLoadDefaultsWhenFilesMissing(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "config.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
database:
  driver: postgres
  url: postgres://recipes@localhost/recipes?sslmode=disable
server:
  port: 9090
  request_timeout: 2s
  cors_allow_origins:
    - https://recipes.example.com
log:
  level: debug
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://recipes@localhost/recipes?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout, "unset keys keep their defaults")
	assert.Equal(t, []string{"https://recipes.example.com"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadAcceptsJSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"database": {"driver": "sqlite", "url": "recipes.db"}, "server": {"port": 8081}}`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "recipes.db", cfg.Database.URL)
}

func TestLoadEnvPriority(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "server:\n  port: 9090\n")
	envPath := writeFile(t, ".env", "PORT=7070\nLOG_LEVEL=warn\nCORS_ALLOW_ORIGINS=http://a.test, http://b.test\n")

	cfg, err := Load(path, envPath)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port, ".env overrides the file")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowOrigins)

	t.Setenv("PORT", "6060")
	cfg, err = Load(path, envPath)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port, "process environment overrides .env")
}

func TestLoadEmptyCORSDisablesOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.CORSAllowOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{
			name:    "bad port",
			env:     map[string]string{"PORT": "eighty"},
			wantErr: `failed to parse PORT "eighty"`,
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: "invalid port 70000",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DATABASE_DRIVER": "oracle"},
			wantErr: `unsupported database driver "oracle"`,
		},
		{
			name:    "malformed file",
			file:    "server: [",
			wantErr: "failed to parse config file",
		},
		{
			name:    "zero timeout",
			file:    "server:\n  request_timeout: 0s\n",
			wantErr: "request timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, "config.yaml", tt.file)
			}

			_, err := Load(path, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
