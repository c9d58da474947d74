// Package logger определяет интерфейс логирования приложения и его реализацию поверх zerolog.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger — интерфейс логирования, используемый всеми слоями приложения.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(err error, format string, args ...interface{})
}

type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger создает логгер, пишущий структурированный JSON в stderr.
// Уровень задаётся переменной окружения LOG_LEVEL (debug|info|warn|error), по умолчанию info.
func NewZerologLogger() Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}

	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return &zerologLogger{log: log}
}

func (l *zerologLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l *zerologLogger) Infof(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *zerologLogger) Warnf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l *zerologLogger) Errorf(err error, format string, args ...interface{}) {
	l.log.Error().Err(err).Msgf(format, args...)
}
