package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, int64(25000), cfg.PaymentAmount)
	assert.Equal(t, "IDR", cfg.PaymentCurrency)
	assert.Equal(t, uint64(1), cfg.AIMaxRetries)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "9090")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("CHAT_FULL_MODEL", "gpt-4.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, "gpt-4.1", cfg.ChatFullModel)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\npayment_amount: 30000\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, int64(30000), cfg.PaymentAmount)
	assert.Equal(t, "IDR", cfg.PaymentCurrency)
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:     "secret",
		DBPassword:    "pw",
		ChatAPIKey:    "sk-test",
		PaymentAmount: 25000,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"missing db password", func(c *Config) { c.DBPassword = "" }},
		{"no completion provider", func(c *Config) { c.ChatAPIKey = "" }},
		{"zero amount", func(c *Config) { c.PaymentAmount = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestHasCompletionProvider_AnyKey(t *testing.T) {
	assert.False(t, (&Config{}).HasCompletionProvider())
	assert.True(t, (&Config{GeminiAPIKey: "g"}).HasCompletionProvider())
	assert.True(t, (&Config{AnthropicAPIKey: "a"}).HasCompletionProvider())
	assert.True(t, (&Config{DeepSeekAPIKey: "d"}).HasCompletionProvider())
}
