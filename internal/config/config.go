package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	APIBaseURL string `validate:"required,url"`
	DBPath     string `validate:"required"`
	LogLevel   string `validate:"oneof=trace debug info warn error"`
	UserAgent  string `validate:"required"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		APIBaseURL: getEnv("SRC_API_BASE_URL", "https://www.speedrun.com/api/v1"),
		DBPath:     getEnv("DB_PATH", "speedrun-browser.db"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		UserAgent:  getEnv("CLIENT_AGENT", "speedrun-browser/1.0"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
