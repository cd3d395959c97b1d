package config

import (
	"fmt"
	"time"

	"github.com/dmikhr/coinpurse-bot/internal/catalog"
	"github.com/dmikhr/coinpurse-bot/internal/economy"
	"github.com/dmikhr/coinpurse-bot/pkg/logger"
)

// Config holds runtime configuration for the coinpurse economy bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Economy   EconomyConfig   `mapstructure:"economy"`
}

// BotConfig configures the Telegram transport adapter.
type BotConfig struct {
	Token      string        `mapstructure:"token" validate:"required"`
	Mode       string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	WebhookURL string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook,omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	AdminIDs   []int64       `mapstructure:"admin_ids"`
}

// IsAdmin reports whether the Telegram user may run privileged commands.
func (b BotConfig) IsAdmin(userID int64) bool {
	for _, id := range b.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}

// ServerConfig configures the ops HTTP server (metrics and health).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects the ledger store backend.
type StorageConfig struct {
	Backend  string        `mapstructure:"backend" validate:"oneof=postgres file"`
	FilePath string        `mapstructure:"file_path"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`

	MigrationsDir string `mapstructure:"migrations_dir"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// RedisConfig configures the Redis connection shared by the ledger cache,
// the rate limiter, and the background job queue.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LoggerConfig configures structured logging output.
type LoggerConfig struct {
	Level  string        `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"oneof=text json"`
	File   FileLogConfig `mapstructure:"file"`
}

// FileLogConfig enables rotated file output when Path is set.
type FileLogConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggerOptions maps the logger and Sentry sections onto construction
// options for pkg/logger.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:  c.Logger.Level,
		Format: c.Logger.Format,
		Env:    c.AppEnv,
		Sentry: c.Sentry.Enabled,
		File: logger.FileOptions{
			Path:       c.Logger.File.Path,
			MaxSizeMB:  c.Logger.File.MaxSizeMB,
			MaxBackups: c.Logger.File.MaxBackups,
			MaxAgeDays: c.Logger.File.MaxAgeDays,
			Compress:   c.Logger.File.Compress,
		},
	}
}

// SentryConfig configures error escalation to Sentry.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// RateLimitRule is a limit over a time window, e.g. 5 per "10s".
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// Parse resolves the rule into its limit and window duration.
func (r RateLimitRule) Parse() (int, time.Duration, error) {
	if r.Window == "" {
		return 0, 0, fmt.Errorf("rate limit window is not set")
	}

	window, err := time.ParseDuration(r.Window)
	if err != nil {
		return 0, 0, fmt.Errorf("parse rate limit window %q: %w", r.Window, err)
	}

	return r.Limit, window, nil
}

// RateLimitConfig configures per-user command throttling.
type RateLimitConfig struct {
	Enabled   bool                     `mapstructure:"enabled"`
	Backend   string                   `mapstructure:"backend" validate:"omitempty,oneof=redis memory"`
	PerUser   RateLimitRule            `mapstructure:"per_user"`
	Commands  map[string]RateLimitRule `mapstructure:"commands"`
	Whitelist []int64                  `mapstructure:"whitelist"`
}

// EconomyConfig tunes economy rules and the job/shop catalogs.
type EconomyConfig struct {
	Rules economy.Config     `mapstructure:"rules"`
	Jobs  []catalog.JobSpec  `mapstructure:"jobs" validate:"dive"`
	Shop  []catalog.ItemSpec `mapstructure:"shop" validate:"dive"`
}

// EngineConfig returns the economy rules with defaults filled in for any
// field left at its zero value.
func (e EconomyConfig) EngineConfig() economy.Config {
	cfg := economy.DefaultConfig()

	if e.Rules.TicketPrice > 0 {
		cfg.TicketPrice = e.Rules.TicketPrice
	}
	if e.Rules.LotteryPrize > 0 {
		cfg.LotteryPrize = e.Rules.LotteryPrize
	}
	if e.Rules.LoanInterestRate > 0 {
		cfg.LoanInterestRate = e.Rules.LoanInterestRate
	}
	if e.Rules.BankInterestRate > 0 {
		cfg.BankInterestRate = e.Rules.BankInterestRate
	}
	if e.Rules.JackpotMultiplier > 0 {
		cfg.JackpotMultiplier = e.Rules.JackpotMultiplier
	}
	if e.Rules.RobFineMin > 0 {
		cfg.RobFineMin = e.Rules.RobFineMin
	}
	if e.Rules.RobFineMax > 0 {
		cfg.RobFineMax = e.Rules.RobFineMax
	}
	if e.Rules.FallbackItemValue > 0 {
		cfg.FallbackItemValue = e.Rules.FallbackItemValue
	}

	return cfg
}

// Catalog builds the job and shop catalogs, falling back to the built-in
// defaults when the configuration leaves them empty.
func (e EconomyConfig) Catalog() *catalog.Catalog {
	if len(e.Jobs) == 0 && len(e.Shop) == 0 {
		return catalog.Default()
	}

	return catalog.New(e.Jobs, e.Shop)
}
