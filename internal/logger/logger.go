package logger

import (
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(zerolog.InfoLevel)
}

// WithLevel rebuilds the logger at the level named in configuration;
// unknown names keep the info default.
func WithLevel(logger zerolog.Logger, level string) zerolog.Logger {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		return logger.Level(lvl)
	}
	return logger
}

var Module = fx.Provide(New)
