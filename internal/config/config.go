package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string

	// AssetDir is a directory holding the world manifest and its documents.
	// Empty selects the assets built into the binary.
	AssetDir      string
	WorldManifest string

	// RedisURL enables the event journal and broadcaster when set.
	RedisURL    string
	EventBuffer int
	FrameRate   int
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:       getEnv("LOG_FILE", ""),
		AssetDir:      getEnv("ASSET_DIR", ""),
		WorldManifest: getEnv("WORLD_MANIFEST", "world.yaml"),
		RedisURL:      getEnv("REDIS_URL", ""),
	}

	var err error
	if cfg.EventBuffer, err = getEnvInt("EVENT_BUFFER", 256); err != nil {
		return nil, err
	}
	if cfg.FrameRate, err = getEnvInt("FRAME_RATE", 60); err != nil {
		return nil, err
	}
	if cfg.FrameRate <= 0 || cfg.FrameRate > 240 {
		return nil, fmt.Errorf("FRAME_RATE must be between 1 and 240, got %d", cfg.FrameRate)
	}
	if cfg.EventBuffer <= 0 {
		return nil, fmt.Errorf("EVENT_BUFFER must be positive, got %d", cfg.EventBuffer)
	}
	return cfg, nil
}

// EventsEnabled reports whether a redis endpoint is configured.
func (c *Config) EventsEnabled() bool {
	return c.RedisURL != ""
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}
