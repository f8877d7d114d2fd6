package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	AnthropicAPIKey  string
	AnthropicBaseURL string

	DefaultModel  string
	FallbackModel string
	MaxTokens     int

	// Changes below this many modified lines are routed to the fallback
	// model up front.
	SimpleThresholdLines int

	ChunkMaxLines int
	ChunkWorkers  int
	MaxWorkers    int

	RequestTimeout time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("ANTHROPIC_BASE_URL", "")
	viper.SetDefault("DEFAULT_MODEL", "claude-sonnet-4-20250514")
	viper.SetDefault("FALLBACK_MODEL", "claude-haiku-4-5-20251001")
	viper.SetDefault("MAX_TOKENS", 4096)
	viper.SetDefault("SIMPLE_THRESHOLD_LINES", 100)
	viper.SetDefault("CHUNK_MAX_LINES", 200)
	viper.SetDefault("CHUNK_WORKERS", 4)
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 120)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file found, using environment only", "error", err)
		}
	}

	if viper.GetString("ANTHROPIC_API_KEY") == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY must be set")
	}

	// Parse the log level string into a slog.Level type.
	var logLevel slog.Level
	logLevelStr := strings.ToLower(viper.GetString("LOG_LEVEL"))
	switch logLevelStr {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	case "info":
		logLevel = slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", logLevelStr)
		logLevel = slog.LevelInfo
	}

	cfg := &Config{
		AnthropicAPIKey:      viper.GetString("ANTHROPIC_API_KEY"),
		AnthropicBaseURL:     viper.GetString("ANTHROPIC_BASE_URL"),
		DefaultModel:         viper.GetString("DEFAULT_MODEL"),
		FallbackModel:        viper.GetString("FALLBACK_MODEL"),
		MaxTokens:            viper.GetInt("MAX_TOKENS"),
		SimpleThresholdLines: viper.GetInt("SIMPLE_THRESHOLD_LINES"),
		ChunkMaxLines:        viper.GetInt("CHUNK_MAX_LINES"),
		ChunkWorkers:         viper.GetInt("CHUNK_WORKERS"),
		MaxWorkers:           viper.GetInt("MAX_WORKERS"),
		RequestTimeout:       time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		LogLevel:             logLevel,
		LogFormat:            viper.GetString("LOG_FORMAT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("DEFAULT_MODEL must not be empty")
	}
	if c.FallbackModel == "" {
		return fmt.Errorf("FALLBACK_MODEL must not be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.ChunkMaxLines <= 0 {
		return fmt.Errorf("CHUNK_MAX_LINES must be positive, got %d", c.ChunkMaxLines)
	}
	return nil
}
