package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "CORS_ALLOWED_ORIGINS", "ARK_STREAM", "CLASSIFIER_MODE", "COMPLETION_TIMEOUT",
		"DEFAULT_LANGUAGE", "REDIS_URL", "HISTORY_TTL", "HISTORY_LIMIT", "ADMIN_TOKEN", "ARK_MODEL", "ARK_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.AI.StreamResponse)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, "heuristic", cfg.Classifier.Mode)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.CompletionTimeout)
	assert.Equal(t, "en", cfg.Pipeline.DefaultLanguage)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 500, cfg.Redis.HistoryLimit)
	assert.Empty(t, cfg.Admin.Token)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("CLASSIFIER_MODE", "MODEL")
	t.Setenv("COMPLETION_TIMEOUT", "5s")
	t.Setenv("DEFAULT_LANGUAGE", "sw")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("HISTORY_LIMIT", "0")
	t.Setenv("ARK_MODEL", "doubao")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_STREAM", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "model", cfg.Classifier.Mode)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.CompletionTimeout)
	assert.Equal(t, "sw", cfg.Pipeline.DefaultLanguage)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 1, cfg.Redis.HistoryLimit)
	assert.True(t, cfg.AI.Enabled())
	assert.False(t, cfg.AI.StreamResponse)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":               "80 80",
		"CLASSIFIER_MODE":    "oracle",
		"COMPLETION_TIMEOUT": "soon",
		"DEFAULT_LANGUAGE":   "de",
		"ARK_TEMPERATURE":    "hot",
		"HISTORY_LIMIT":      "many",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestNewChatModelRequiresCredentials(t *testing.T) {
	cfg := AIConfig{Model: "doubao-pro"}
	assert.False(t, cfg.Enabled())

	_, err := cfg.NewChatModel(t.Context())
	require.Error(t, err)
	assert.Regexp(t, `^[a-z]`, err.Error())
	assert.Contains(t, err.Error(), "ARK_API_KEY")
}
