package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/healthchat/backend/internal/logger"
)

type Config struct {
	Gemini GeminiConfig
	DB     DBConfig
	Redis  RedisConfig
	Server ServerConfig
	Logger LoggerConfig
}

// GeminiConfig is passed into the gateway constructor and never mutated.
type GeminiConfig struct {
	APIKey     string
	ProModel   string
	FlashModel string
	EmbedModel string
	MaxRetries int
	BaseDelay  time.Duration
	Timeout    time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host string
	Port string
}

type ServerConfig struct {
	Port string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		Gemini: GeminiConfig{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			ProModel:   getEnvOrDefault("GEMINI_MODEL_PRO", "gemini-2.5-pro"),
			FlashModel: getEnvOrDefault("GEMINI_MODEL_FLASH", "gemini-2.5-flash"),
			EmbedModel: getEnvOrDefault("GEMINI_MODEL_EMBED", "text-embedding-004"),
			MaxRetries: getEnvInt("GEMINI_MAX_RETRIES", 5),
			BaseDelay:  time.Duration(getEnvInt("GEMINI_BASE_DELAY_MS", 300)) * time.Millisecond,
			Timeout:    time.Duration(getEnvInt("GEMINI_TIMEOUT_SEC", 30)) * time.Second,
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "healthchat"),
		},
		Redis: RedisConfig{
			Host: getEnvOrDefault("REDIS_HOST", ""),
			Port: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("SERVER_PORT", "8080"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	return cfg, nil
}
