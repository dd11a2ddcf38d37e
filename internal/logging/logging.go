package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tikaparse/internal/config"
)

// Setup builds the root logger from cfg and installs it as the global
// zerolog logger. Unknown levels fall back to info.
func Setup(cfg config.LogConfig) zerolog.Logger {
	return New(cfg, os.Stderr)
}

// New is Setup with an explicit output.
func New(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	w := out
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
