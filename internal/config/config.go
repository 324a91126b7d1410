package config

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"go-acs-bot/internal/logger"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"

	TransportPolling = "polling"
	TransportWebhook = "webhook"
)

// Config holds the process settings read from the environment
type Config struct {
	ConfigPath   string `envconfig:"BOT_CONFIG_PATH" default:"./data/config.json"`
	StoreBackend string `envconfig:"STORE_BACKEND" default:"file"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass    string `envconfig:"REDIS_PASS"`
	RedisKey     string `envconfig:"REDIS_KEY" default:"genieacs-bot:config"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:"./data/bot.db"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"true"`

	JWTSecret      string   `envconfig:"JWT_SECRET"`
	AdminUser      string   `envconfig:"ADMIN_USER" default:"admin"`
	AdminPass      string   `envconfig:"ADMIN_PASS" default:"admin123"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	TransportMode string `envconfig:"TRANSPORT_MODE" default:"polling"`
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`

	TelegramAPIURL string        `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	ACSTimeout     time.Duration `envconfig:"ACS_TIMEOUT" default:"30s"`
	PollTimeout    int           `envconfig:"POLL_TIMEOUT" default:"30"`

	AuditRetention     time.Duration `envconfig:"AUDIT_RETENTION" default:"720h"`
	AuditPruneInterval time.Duration `envconfig:"AUDIT_PRUNE_INTERVAL" default:"1h"`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateRandomSecret(32)
		logger.Warn().Msg("JWT_SECRET not set, generated a random secret; API tokens will not survive a restart")
	}
	if cfg.TransportMode == TransportWebhook && cfg.WebhookSecret == "" {
		cfg.WebhookSecret = generateRandomSecret(32)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendFile:
		if strings.TrimSpace(c.ConfigPath) == "" {
			return fmt.Errorf("BOT_CONFIG_PATH must not be empty")
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR must not be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q", BackendFile, BackendRedis)
	}

	switch c.TransportMode {
	case TransportPolling:
	case TransportWebhook:
		if !strings.HasPrefix(c.WebhookURL, "https://") {
			return fmt.Errorf("WEBHOOK_URL must start with https:// in webhook mode")
		}
	default:
		return fmt.Errorf("TRANSPORT_MODE must be %q or %q", TransportPolling, TransportWebhook)
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.ServerPort)
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("POLL_TIMEOUT must not be negative")
	}
	return nil
}

// generateRandomSecret generates a cryptographically secure random string
func generateRandomSecret(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Fallback to time-based seed if crypto/rand fails
		return fmt.Sprintf("fallback-secret-%d", time.Now().UnixNano())
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return string(b)
}
