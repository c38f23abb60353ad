// Package config provides configuration management for the market bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	apperrors "market-bot/internal/errors"
	"market-bot/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Market      MarketConfig   `mapstructure:"market"`
	Alerts      AlertsConfig   `mapstructure:"alerts"`
	Provider    ProviderConfig `mapstructure:"provider"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
	LLM         LLMConfig      `mapstructure:"llm"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Credentials Credentials    `mapstructure:"-"` // Loaded separately
}

// MarketConfig holds snapshot settings.
type MarketConfig struct {
	ExchangeLabel string `mapstructure:"exchange_label"` // label shown in messages
	Index         string `mapstructure:"index"`          // NIFTY, BANKNIFTY, allSec...
	TopN          int    `mapstructure:"top_n"`

	// SnapshotSchedule is a cron spec for scheduled snapshots in alert mode.
	// Empty disables them.
	SnapshotSchedule string `mapstructure:"snapshot_schedule"`
}

// AlertsConfig holds watchlist alert settings.
type AlertsConfig struct {
	Watchlist          []string `mapstructure:"watchlist"`
	ThresholdPercent   float64  `mapstructure:"threshold_percent"`
	IntervalMinutes    int      `mapstructure:"interval_minutes"`
	OncePerDay         bool     `mapstructure:"once_per_day"`
	AlwaysSendSnapshot bool     `mapstructure:"always_send_snapshot"`
	MarketHoursOnly    bool     `mapstructure:"market_hours_only"`
}

// ProviderConfig holds market data provider settings.
type ProviderConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	ArchiveURL string        `mapstructure:"archive_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
}

// TelegramConfig holds Telegram delivery settings.
type TelegramConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// PollTimeout is the long-poll wait used by the listen command.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// LLMConfig holds conversational assistant settings.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Credentials holds static tokens.
type Credentials struct {
	Telegram TelegramCredentials `mapstructure:"telegram"`
	OpenAI   OpenAICredentials   `mapstructure:"openai"`
}

// TelegramCredentials holds the bot token and target chat.
type TelegramCredentials struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// OpenAICredentials holds the API key for an OpenAI-compatible endpoint.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/market-bot"
	}
	return filepath.Join(home, ".config", "market-bot")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// A .env in the working directory feeds the env overrides below.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// setDefaults mirrors the shipped template so a partial file still works.
func setDefaults(v *viper.Viper) {
	v.SetDefault("market.exchange_label", "NSE")
	v.SetDefault("market.index", "NIFTY")
	v.SetDefault("market.top_n", 5)
	v.SetDefault("market.snapshot_schedule", "")

	v.SetDefault("alerts.watchlist", []string{"RELIANCE", "TCS", "HDFCBANK", "INFY"})
	v.SetDefault("alerts.threshold_percent", 0.0)
	v.SetDefault("alerts.interval_minutes", 1)
	v.SetDefault("alerts.once_per_day", true)
	v.SetDefault("alerts.always_send_snapshot", true)
	v.SetDefault("alerts.market_hours_only", false)

	v.SetDefault("provider.base_url", "https://www.nseindia.com")
	v.SetDefault("provider.archive_url", "https://nsearchives.nseindia.com")
	v.SetDefault("provider.timeout", 15*time.Second)
	v.SetDefault("provider.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.timeout", 15*time.Second)
	v.SetDefault("telegram.poll_timeout", 30*time.Second)

	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.model", "llama3.2")
	v.SetDefault("llm.max_tokens", 600)
	v.SetDefault("llm.temperature", 0.4)

	def := logging.DefaultLogConfig()
	v.SetDefault("logging.level", def.Level)
	v.SetDefault("logging.console", def.Console)
	v.SetDefault("logging.file", def.File)
	v.SetDefault("logging.file_path", def.FilePath)
	v.SetDefault("logging.max_size", def.MaxSize)
	v.SetDefault("logging.max_backups", def.MaxBackups)
	v.SetDefault("logging.max_age", def.MaxAge)
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Tokens may come from the environment alone.
			if err := createTemplateCredentials(configDir); err != nil {
				return err
			}
			if err := v.ReadInConfig(); err != nil {
				return err
			}
			return v.Unmarshal(creds)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Credentials.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Credentials.Telegram.ChatID = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	cfg.Credentials.Telegram.BotToken = strings.TrimSpace(cfg.Credentials.Telegram.BotToken)
	cfg.Credentials.Telegram.ChatID = strings.TrimSpace(cfg.Credentials.Telegram.ChatID)

	for i, sym := range cfg.Alerts.Watchlist {
		cfg.Alerts.Watchlist[i] = strings.ToUpper(strings.TrimSpace(sym))
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Market.TopN <= 0 {
		return apperrors.NewValidationError("market.top_n", c.Market.TopN, "must be positive")
	}
	if c.Alerts.ThresholdPercent < 0 {
		return apperrors.NewValidationError("alerts.threshold_percent", c.Alerts.ThresholdPercent, "must be non-negative")
	}
	if c.Alerts.IntervalMinutes < 1 {
		return apperrors.NewValidationError("alerts.interval_minutes", c.Alerts.IntervalMinutes, "must be at least 1")
	}
	if c.Market.SnapshotSchedule != "" {
		if _, err := cron.ParseStandard(c.Market.SnapshotSchedule); err != nil {
			return apperrors.NewValidationError("market.snapshot_schedule", c.Market.SnapshotSchedule, err.Error())
		}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return apperrors.NewValidationError("llm.temperature", c.LLM.Temperature, "must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return apperrors.NewValidationError("llm.max_tokens", c.LLM.MaxTokens, "must be positive")
	}
	return nil
}

// RequireTelegram checks that delivery credentials are present and not
// template placeholders.
func (c *Config) RequireTelegram() error {
	t := c.Credentials.Telegram
	if t.BotToken == "" || t.ChatID == "" ||
		strings.HasPrefix(t.BotToken, "PUT_") || strings.HasPrefix(t.ChatID, "PUT_") {
		return fmt.Errorf("%w: set telegram bot_token and chat_id in credentials.toml or TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID",
			apperrors.ErrNotConfigured)
	}
	return nil
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
