package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds the bot token and update delivery settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds is the getUpdates timeout; 0 selects the default.
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	// SendRetries is the number of extra attempts for outgoing messages. Zero disables retries.
	SendRetries int `yaml:"send_retries" envconfig:"TELEGRAM_SEND_RETRIES"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	// Profile is the environment profile, e.g. "dev" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Error reports a missing or invalid setting. Startup aborts on it.
type Error struct {
	Key    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConfigError reports whether err is or wraps a *Error.
func IsConfigError(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr)
}

// Load reads the core configuration from an optional YAML file and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto decodes the YAML file at path into dst, then overlays environment
// variables. An empty path skips the file. dst must be a pointer to a struct.
func LoadInto(path string, dst any) error {
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return &Error{Key: "file", Reason: "read " + path, Err: err}
		}
		if err := yaml.Unmarshal(data, dst); err != nil {
			return &Error{Key: "file", Reason: "parse " + path, Err: err}
		}
	}
	if err := envconfig.Process("", dst); err != nil {
		return &Error{Key: "env", Reason: "process environment", Err: err}
	}
	return nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return &Error{Key: "config", Reason: "nil config"}
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return &Error{Key: "telegram.token", Reason: "TELEGRAM_BOT_TOKEN is required"}
	}
	if cfg.Telegram.SendRetries < 0 {
		return &Error{Key: "telegram.send_retries", Reason: "must be >= 0"}
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch rm {
	case "", "polling":
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return &Error{Key: "webhook.url", Reason: "required when telegram.run_mode is webhook"}
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return &Error{Key: "webhook.listen", Reason: "required when telegram.run_mode is webhook"}
		}
		if cfg.Webhook.Port <= 0 {
			return &Error{Key: "webhook.port", Reason: "must be > 0 when telegram.run_mode is webhook"}
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return &Error{Key: "telegram.longpoll_timeout_seconds", Reason: "must be >= 0"}
		}
	default:
		return &Error{Key: "telegram.run_mode", Reason: fmt.Sprintf("invalid value %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)}
	}
	cfg.Telegram.RunMode = rm

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Dir != "" && cfg.Logging.BotFile == "" {
		cfg.Logging.BotFile = "lessonbot.log"
	}
	return nil
}
