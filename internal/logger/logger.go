package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Dyastin-0/llmgate/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global zerolog logger. The returned closer releases
// the log file, if any.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out, closer := output(cfg)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	return closer, nil
}

func output(cfg config.LogConfig) (io.Writer, io.Closer) {
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		return file, file
	}

	if cfg.Console {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, nopCloser{}
	}

	return os.Stderr, nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
