// Package logging настраивает структурированное логирование приложения
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config настройки логирования
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Output io.Writer
}

// New создает логгер по настройкам. По умолчанию пишет в stderr,
// чтобы не смешиваться с выводом команд.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(output).
			Level(level).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.TimeOnly,
	}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SetGlobal делает логгер глобальным
func SetGlobal(logger zerolog.Logger) {
	log.Logger = logger
}

// Nop возвращает логгер, который ничего не пишет
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
