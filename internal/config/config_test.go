package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"PORT", "STORE_BACKEND", "GOOGLE_CLOUD_PROJECT", "MONGO_URI", "MONGO_DB_NAME",
	"FETCH_TIMEOUT_SECONDS", "ALLOWED_ORIGINS", "COMPANY_PROFILE_PATH", "DEFAULT_ACCOUNT",
	"LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8111", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "bizpulse", cfg.MongoDBName)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, defaultOrigins, cfg.AllowedOrigins)
	assert.Equal(t, "demo", cfg.DefaultAccount)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "pulse_test")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://bizpulse.app, ,https://www.bizpulse.app")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "pulse_test", cfg.MongoDBName)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"https://bizpulse.app", "https://www.bizpulse.app"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.DefaultAccount)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad port",
			env:     map[string]string{"PORT": "http"},
			wantErr: "PORT must be numeric",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"STORE_BACKEND": "postgres"},
			wantErr: "unknown STORE_BACKEND",
		},
		{
			name:    "firestore without project",
			env:     map[string]string{"STORE_BACKEND": "firestore"},
			wantErr: "GOOGLE_CLOUD_PROJECT is required",
		},
		{
			name:    "mongo without uri",
			env:     map[string]string{"STORE_BACKEND": "mongo"},
			wantErr: "MONGO_URI is required",
		},
		{
			name:    "zero timeout",
			env:     map[string]string{"FETCH_TIMEOUT_SECONDS": "0"},
			wantErr: "invalid FETCH_TIMEOUT_SECONDS",
		},
		{
			name:    "non numeric timeout",
			env:     map[string]string{"FETCH_TIMEOUT_SECONDS": "ten"},
			wantErr: "invalid FETCH_TIMEOUT_SECONDS",
		},
		{
			name:    "empty origin list",
			env:     map[string]string{"ALLOWED_ORIGINS": " , "},
			wantErr: "ALLOWED_ORIGINS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	for _, key := range configEnv {
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7000\nDEFAULT_ACCOUNT=acme\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "acme", cfg.DefaultAccount)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8111", cfg.Port)
}
