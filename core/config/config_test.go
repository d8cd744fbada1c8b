package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadReadsYAMLAndEnvOverrides(t *testing.T) {
	unsetEnv(t, "TELEGRAM_BOT_TOKEN", "BOT_TOKEN", "TELEGRAM_TELEGRAM_RUN_MODE", "TELEGRAM_RUN_MODE")
	t.Setenv("TELEGRAM_SEND_RETRIES", "2")

	path := writeYAML(t, `
telegram:
  token: yaml-token
  run_mode: polling
  send_retries: 0
logging:
  format: kv
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml-token", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, 2, cfg.Telegram.SendRetries)
	assert.Equal(t, "kv", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	unsetEnv(t, "TELEGRAM_RUN_MODE", "TELEGRAM_TELEGRAM_RUN_MODE")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestLoadMissingFileIsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantKey string
	}{
		{name: "missing token", cfg: Config{}, wantKey: "telegram.token"},
		{name: "negative retries", cfg: Config{Telegram: TelegramConfig{Token: "t", SendRetries: -1}}, wantKey: "telegram.send_retries"},
		{name: "unknown run mode", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: "push"}}, wantKey: "telegram.run_mode"},
		{name: "webhook without url", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}, wantKey: "webhook.url"},
		{
			name: "webhook without port",
			cfg: Config{
				Telegram: TelegramConfig{Token: "t", RunMode: "webhook"},
				Webhook:  WebhookConfig{URL: "https://bot.example.com/hook", Listen: "0.0.0.0"},
			},
			wantKey: "webhook.port",
		},
		{name: "negative long poll timeout", cfg: Config{Telegram: TelegramConfig{Token: "t", LongPollTimeoutSeconds: -1}}, wantKey: "telegram.longpoll_timeout_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Normalize(&tt.cfg)
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.wantKey, cerr.Key)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := Config{
		Telegram: TelegramConfig{Token: "  t  ", RunMode: "WEBHOOK"},
		Webhook:  WebhookConfig{URL: "https://bot.example.com/hook", Listen: "0.0.0.0", Port: 8443},
		Logging:  LoggingConfig{Dir: "logs"},
	}
	require.NoError(t, Normalize(&cfg))
	assert.Equal(t, "t", cfg.Telegram.Token)
	assert.Equal(t, RunModeWebhook, cfg.Telegram.RunMode)
	assert.Equal(t, "lessonbot.log", cfg.Logging.BotFile)
}
