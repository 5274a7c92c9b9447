// Package config loads the bot configuration from config.json and applies
// environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"crypto-alert-bot/internal/database"
	"crypto-alert-bot/internal/logging"
	"crypto-alert-bot/internal/market"
	"crypto-alert-bot/internal/notification"
	"crypto-alert-bot/internal/server"
	"crypto-alert-bot/internal/strategy"
)

type Config struct {
	BinanceConfig      BinanceConfig      `json:"binance"`
	WatchConfig        WatchConfig        `json:"watch"`
	AgentConfig        AgentConfig        `json:"agent"`
	ExchangeConfig     ExchangeConfig     `json:"exchange"`
	NotificationConfig NotificationConfig `json:"notification"`
	PersistenceConfig  PersistenceConfig  `json:"persistence"`
	ServerConfig       server.Config      `json:"server"`
	LoggingConfig      logging.Config     `json:"logging"`
}

type BinanceConfig struct {
	BaseURL  string `json:"base_url"`
	MockMode bool   `json:"mock_mode"` // Use simulated data when Binance API is unavailable
}

// WatchConfig is the instrument grid: every symbol is scanned on every
// timeframe.
type WatchConfig struct {
	Symbols    []string `json:"symbols"`
	Timeframes []string `json:"timeframes"`
}

type AgentConfig struct {
	Enabled    bool     `json:"enabled"`
	Long       bool     `json:"long"`
	Short      bool     `json:"short"`
	Strategies []string `json:"strategies"`
}

type ExchangeConfig struct {
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

type NotificationConfig struct {
	Enabled  bool                        `json:"enabled"`
	Telegram notification.TelegramConfig `json:"telegram"`
	Discord  notification.DiscordConfig  `json:"discord"`
}

type PersistenceConfig struct {
	HistoryPath  string               `json:"history_path"`
	SnapshotPath string               `json:"snapshot_path"`
	Postgres     database.Config      `json:"postgres"`
	Redis        database.RedisConfig `json:"redis"`
}

// Load reads config.json if present and applies environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = defaultConfig()
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		BinanceConfig: BinanceConfig{
			BaseURL: "https://api.binance.com",
		},
		WatchConfig: WatchConfig{
			Symbols:    []string{"BTCUSDT"},
			Timeframes: []string{"15m"},
		},
		AgentConfig: AgentConfig{
			Enabled:    true,
			Long:       true,
			Short:      true,
			Strategies: []string{"hammer"},
		},
		ExchangeConfig: ExchangeConfig{
			PollIntervalSeconds: 10,
		},
		PersistenceConfig: PersistenceConfig{
			HistoryPath:  "data/positions_history.csv",
			SnapshotPath: "data/positions_open.csv",
		},
		ServerConfig: server.Config{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
		},
		LoggingConfig: logging.Config{
			Level:  "INFO",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	cfg.BinanceConfig.BaseURL = getEnvOrDefault("BINANCE_BASE_URL", cfg.BinanceConfig.BaseURL)
	cfg.BinanceConfig.MockMode = getEnvBoolOrDefault("MOCK_MODE", cfg.BinanceConfig.MockMode)

	if symbols := os.Getenv("WATCH_SYMBOLS"); symbols != "" {
		cfg.WatchConfig.Symbols = splitList(symbols)
	}
	if timeframes := os.Getenv("WATCH_TIMEFRAMES"); timeframes != "" {
		cfg.WatchConfig.Timeframes = splitList(timeframes)
	}

	cfg.AgentConfig.Enabled = getEnvBoolOrDefault("AGENT_ENABLED", cfg.AgentConfig.Enabled)
	cfg.AgentConfig.Long = getEnvBoolOrDefault("AGENT_LONG", cfg.AgentConfig.Long)
	cfg.AgentConfig.Short = getEnvBoolOrDefault("AGENT_SHORT", cfg.AgentConfig.Short)
	if strategies := os.Getenv("AGENT_STRATEGIES"); strategies != "" {
		cfg.AgentConfig.Strategies = splitList(strategies)
	}

	cfg.ExchangeConfig.PollIntervalSeconds = getEnvIntOrDefault("POLL_INTERVAL_SECONDS", cfg.ExchangeConfig.PollIntervalSeconds)

	cfg.NotificationConfig.Enabled = getEnvBoolOrDefault("NOTIFICATIONS_ENABLED", cfg.NotificationConfig.Enabled)
	cfg.NotificationConfig.Telegram.Enabled = getEnvBoolOrDefault("TELEGRAM_ENABLED", cfg.NotificationConfig.Telegram.Enabled)
	cfg.NotificationConfig.Telegram.BotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", cfg.NotificationConfig.Telegram.BotToken)
	cfg.NotificationConfig.Telegram.ChatID = getEnvOrDefault("TELEGRAM_CHAT_ID", cfg.NotificationConfig.Telegram.ChatID)
	cfg.NotificationConfig.Discord.Enabled = getEnvBoolOrDefault("DISCORD_ENABLED", cfg.NotificationConfig.Discord.Enabled)
	cfg.NotificationConfig.Discord.WebhookURL = getEnvOrDefault("DISCORD_WEBHOOK_URL", cfg.NotificationConfig.Discord.WebhookURL)

	cfg.PersistenceConfig.HistoryPath = getEnvOrDefault("HISTORY_PATH", cfg.PersistenceConfig.HistoryPath)
	cfg.PersistenceConfig.SnapshotPath = getEnvOrDefault("SNAPSHOT_PATH", cfg.PersistenceConfig.SnapshotPath)
	cfg.PersistenceConfig.Postgres.Enabled = getEnvBoolOrDefault("POSTGRES_ENABLED", cfg.PersistenceConfig.Postgres.Enabled)
	cfg.PersistenceConfig.Postgres.Host = getEnvOrDefault("POSTGRES_HOST", cfg.PersistenceConfig.Postgres.Host)
	cfg.PersistenceConfig.Postgres.Port = getEnvIntOrDefault("POSTGRES_PORT", cfg.PersistenceConfig.Postgres.Port)
	cfg.PersistenceConfig.Postgres.User = getEnvOrDefault("POSTGRES_USER", cfg.PersistenceConfig.Postgres.User)
	cfg.PersistenceConfig.Postgres.Password = getEnvOrDefault("POSTGRES_PASSWORD", cfg.PersistenceConfig.Postgres.Password)
	cfg.PersistenceConfig.Postgres.Database = getEnvOrDefault("POSTGRES_DATABASE", cfg.PersistenceConfig.Postgres.Database)
	cfg.PersistenceConfig.Postgres.SSLMode = getEnvOrDefault("POSTGRES_SSLMODE", cfg.PersistenceConfig.Postgres.SSLMode)
	cfg.PersistenceConfig.Redis.Enabled = getEnvBoolOrDefault("REDIS_ENABLED", cfg.PersistenceConfig.Redis.Enabled)
	cfg.PersistenceConfig.Redis.Addr = getEnvOrDefault("REDIS_ADDR", cfg.PersistenceConfig.Redis.Addr)
	cfg.PersistenceConfig.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.PersistenceConfig.Redis.Password)
	cfg.PersistenceConfig.Redis.DB = getEnvIntOrDefault("REDIS_DB", cfg.PersistenceConfig.Redis.DB)

	cfg.ServerConfig.Enabled = getEnvBoolOrDefault("SERVER_ENABLED", cfg.ServerConfig.Enabled)
	cfg.ServerConfig.Host = getEnvOrDefault("SERVER_HOST", cfg.ServerConfig.Host)
	cfg.ServerConfig.Port = getEnvIntOrDefault("SERVER_PORT", cfg.ServerConfig.Port)
	cfg.ServerConfig.AuthEnabled = getEnvBoolOrDefault("SERVER_AUTH_ENABLED", cfg.ServerConfig.AuthEnabled)
	cfg.ServerConfig.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.ServerConfig.JWTSecret)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", cfg.LoggingConfig.Output)
	cfg.LoggingConfig.JSONFormat = getEnvBoolOrDefault("LOG_JSON", cfg.LoggingConfig.JSONFormat)
}

// Validate fails fast on configuration the bot cannot run with.
func (c *Config) Validate() error {
	if len(c.WatchConfig.Symbols) == 0 {
		return fmt.Errorf("watch.symbols must not be empty")
	}
	for _, tf := range c.WatchConfig.Timeframes {
		if _, err := market.ParseTimeframe(tf); err != nil {
			return fmt.Errorf("watch.timeframes: %w", err)
		}
	}
	if len(c.WatchConfig.Timeframes) == 0 {
		return fmt.Errorf("watch.timeframes must not be empty")
	}
	for _, name := range c.AgentConfig.Strategies {
		if _, err := strategy.ForName(name); err != nil {
			return fmt.Errorf("agent.strategies: %w", err)
		}
	}
	if c.ExchangeConfig.PollIntervalSeconds <= 0 {
		return fmt.Errorf("exchange.poll_interval_seconds must be positive")
	}
	if c.ServerConfig.Enabled && c.ServerConfig.AuthEnabled && c.ServerConfig.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret is required when auth is enabled")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(value, "true")
	}
	return defaultValue
}
