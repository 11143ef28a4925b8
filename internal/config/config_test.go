package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"TANAMI_API_URL", "TANAMI_CHAT_URL", "TANAMI_REQUEST_TIMEOUT",
	"TANAMI_STORAGE", "TANAMI_STORAGE_PATH", "TANAMI_GEOCODER_URL",
	"GROQ_API_KEY", "GROQ_BASE_URL", "GROQ_MODEL", "GROQ_TIMEOUT",
	"PORT", "CORS_ALLOW_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, DefaultGeocoderURL, cfg.API.GeocoderURL)
	assert.Equal(t, "keyring", cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, DefaultChatURL, cfg.Chat.URL)
	assert.Empty(t, cfg.Chat.GroqAPIKey)
	assert.Equal(t, DefaultGroqBaseURL, cfg.Chat.GroqBaseURL)
	assert.Equal(t, DefaultChatTimeout, cfg.Chat.Timeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{DefaultOrigin}, cfg.Server.AllowOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	t.Setenv("TANAMI_API_URL", "https://api.tanami.id/")
	t.Setenv("TANAMI_REQUEST_TIMEOUT", "5s")
	t.Setenv("TANAMI_STORAGE", "SQLite")
	t.Setenv("TANAMI_STORAGE_PATH", dir)
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_TIMEOUT", "45s")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, https://tanami.id ,")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.tanami.id", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, dir, cfg.Storage.Path)
	assert.Equal(t, "gsk_test", cfg.Chat.GroqAPIKey)
	assert.Equal(t, 45*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://tanami.id"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unparseable timeout", "TANAMI_REQUEST_TIMEOUT", "soon", "TANAMI_REQUEST_TIMEOUT"},
		{"negative timeout", "TANAMI_REQUEST_TIMEOUT", "-1s", "must not be negative"},
		{"unparseable chat timeout", "GROQ_TIMEOUT", "later", "GROQ_TIMEOUT"},
		{"unknown storage", "TANAMI_STORAGE", "redis", "TANAMI_STORAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TANAMI_STORAGE_PATH", t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
