package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	// Database
	DBHost     string `yaml:"db_host"     env:"DB_HOST"     env-default:"localhost"`
	DBPort     string `yaml:"db_port"     env:"DB_PORT"     env-default:"5432"`
	DBUser     string `yaml:"db_user"     env:"DB_USER"     env-default:"postgres"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBName     string `yaml:"db_name"     env:"DB_NAME"     env-default:"idebisnis_db"`
	DBSSLMode  string `yaml:"db_sslmode"  env:"DB_SSLMODE"  env-default:"disable"`

	// Redis (optional, preview cache)
	RedisURL        string        `yaml:"redis_url"         env:"REDIS_URL"`
	PreviewCacheTTL time.Duration `yaml:"preview_cache_ttl" env:"PREVIEW_CACHE_TTL" env-default:"30m"`

	// JWT
	JWTSecret        string        `yaml:"jwt_secret"         env:"JWT_SECRET"`
	JWTAccessExpiry  time.Duration `yaml:"jwt_access_expiry"  env:"JWT_ACCESS_EXPIRY"  env-default:"15m"`
	JWTRefreshExpiry time.Duration `yaml:"jwt_refresh_expiry" env:"JWT_REFRESH_EXPIRY" env-default:"168h"`

	// Completion providers, tried in this order: chat (OpenAI-compatible),
	// DeepSeek, Anthropic, Gemini. Empty keys are skipped.
	ChatAPIKey       string `yaml:"chat_api_key"       env:"CHAT_API_KEY"`
	ChatAPIURL       string `yaml:"chat_api_url"       env:"CHAT_API_URL"       env-default:"https://api.openai.com/v1/chat/completions"`
	ChatPreviewModel string `yaml:"chat_preview_model" env:"CHAT_PREVIEW_MODEL" env-default:"gpt-4o-mini"`
	ChatFullModel    string `yaml:"chat_full_model"    env:"CHAT_FULL_MODEL"    env-default:"gpt-4o"`

	DeepSeekAPIKey       string `yaml:"deepseek_api_key"       env:"DEEPSEEK_API_KEY"`
	DeepSeekAPIURL       string `yaml:"deepseek_api_url"       env:"DEEPSEEK_API_URL"       env-default:"https://api.deepseek.com/v1/chat/completions"`
	DeepSeekPreviewModel string `yaml:"deepseek_preview_model" env:"DEEPSEEK_PREVIEW_MODEL" env-default:"deepseek-chat"`
	DeepSeekFullModel    string `yaml:"deepseek_full_model"    env:"DEEPSEEK_FULL_MODEL"    env-default:"deepseek-reasoner"`

	AnthropicAPIKey       string `yaml:"anthropic_api_key"       env:"ANTHROPIC_API_KEY"`
	AnthropicPreviewModel string `yaml:"anthropic_preview_model" env:"ANTHROPIC_PREVIEW_MODEL" env-default:"claude-3-5-haiku-latest"`
	AnthropicFullModel    string `yaml:"anthropic_full_model"    env:"ANTHROPIC_FULL_MODEL"    env-default:"claude-sonnet-4-5"`

	GeminiAPIKey       string `yaml:"gemini_api_key"       env:"GEMINI_API_KEY"`
	GeminiPreviewModel string `yaml:"gemini_preview_model" env:"GEMINI_PREVIEW_MODEL" env-default:"gemini-2.5-flash-lite"`
	GeminiFullModel    string `yaml:"gemini_full_model"    env:"GEMINI_FULL_MODEL"    env-default:"gemini-2.5-pro"`

	AITimeout    time.Duration `yaml:"ai_timeout"     env:"AI_TIMEOUT"     env-default:"60s"`
	AIMaxRetries uint64        `yaml:"ai_max_retries" env:"AI_MAX_RETRIES" env-default:"1"`

	// Payment (QRIS)
	PaymentAmount        int64  `yaml:"payment_amount"         env:"PAYMENT_AMOUNT"         env-default:"25000"`
	PaymentCurrency      string `yaml:"payment_currency"       env:"PAYMENT_CURRENCY"       env-default:"IDR"`
	PaymentMerchantName  string `yaml:"payment_merchant_name"  env:"PAYMENT_MERCHANT_NAME"  env-default:"IdeBisnisAI"`
	PaymentWebhookSecret string `yaml:"payment_webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`

	// Admin
	AdminEmails  string `yaml:"admin_emails"   env:"ADMIN_EMAILS"`
	AdminUserIDs string `yaml:"admin_user_ids" env:"ADMIN_USER_IDS"`
	AdminToken   string `yaml:"admin_token"    env:"ADMIN_TOKEN"`

	// Logging
	LogLevel         string `yaml:"log_level"          env:"LOG_LEVEL"          env-default:"info"`
	LogRetentionDays int    `yaml:"log_retention_days" env:"LOG_RETENTION_DAYS" env-default:"30"`

	// Server
	Port        string `yaml:"port"         env:"PORT"         env-default:"8080"`
	CORSOrigins string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"*"`
	SentryDSN   string `yaml:"sentry_dsn"   env:"SENTRY_DSN"`
	AppEnv      string `yaml:"app_env"      env:"APP_ENV"      env-default:"development"`
}

// Load reads the config from CONFIG_PATH (YAML, optional) and the environment.
// Environment values win over the file.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	if !c.HasCompletionProvider() {
		return errors.New("at least one of CHAT_API_KEY, DEEPSEEK_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY is required")
	}
	if c.PaymentAmount <= 0 {
		return errors.New("PAYMENT_AMOUNT must be positive")
	}
	return nil
}

func (c *Config) HasCompletionProvider() bool {
	return c.ChatAPIKey != "" || c.DeepSeekAPIKey != "" || c.AnthropicAPIKey != "" || c.GeminiAPIKey != ""
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
