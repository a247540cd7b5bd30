package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Level задаёт минимальный уровень сообщений, которые попадут в лог.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var levelNames = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"error": LevelError,
}

// ParseLevel преобразует строковое значение из конфигурации в Level.
func ParseLevel(value string) Level {
	value = strings.TrimSpace(strings.ToLower(value))
	if lvl, ok := levelNames[value]; ok {
		return lvl
	}
	return LevelInfo
}

// Fields описывает структурированный контекст записи.
type Fields map[string]any

// Logger представляет потокобезопасный файловый логгер с уровнями поверх logrus.
type Logger struct {
	minLevel Level
	entry    *logrus.Entry
	closer   io.Closer
}

// New создаёт новый логгер, пишущий в указанный файл.
func New(path string, level Level) (*Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	logger := NewWriter(file, level)
	logger.closer = file
	return logger, nil
}

// NewWriter создаёт логгер поверх произвольного io.Writer.
func NewWriter(w io.Writer, level Level) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(level.logrus())
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return &Logger{minLevel: level, entry: logrus.NewEntry(base)}
}

// Discard возвращает логгер, отбрасывающий все записи.
func Discard() *Logger {
	return NewWriter(io.Discard, LevelError)
}

// Close освобождает ресурсы файлового логгера.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// WithFields возвращает логгер, добавляющий поля к каждой записи.
func (l *Logger) WithFields(fields Fields) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{minLevel: l.minLevel, entry: l.entry.WithFields(logrus.Fields(fields))}
}

// Debugf пишет отладочное сообщение.
func (l *Logger) Debugf(format string, args ...any) {
	l.write(LevelDebug, format, args...)
}

// Infof пишет информационное сообщение.
func (l *Logger) Infof(format string, args ...any) {
	l.write(LevelInfo, format, args...)
}

// Errorf пишет сообщение об ошибке.
func (l *Logger) Errorf(format string, args ...any) {
	l.write(LevelError, format, args...)
}

func (l *Logger) write(level Level, format string, args ...any) {
	if l == nil || l.entry == nil || level < l.minLevel {
		return
	}
	entry := l.entry.WithTime(time.Now().UTC())
	switch level {
	case LevelDebug:
		entry.Debugf(format, args...)
	case LevelError:
		entry.Errorf(format, args...)
	default:
		entry.Infof(format, args...)
	}
}

// Level возвращает минимальный уровень логгера.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelInfo
	}
	return l.minLevel
}

// String возвращает текстовое представление уровня.
func (lvl Level) String() string {
	switch lvl {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (lvl Level) logrus() logrus.Level {
	switch lvl {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

type loggerContextKey struct{}

// WithContext сохраняет логгер в контексте для дальнейшей передачи.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext извлекает логгер из контекста, если он там есть.
func FromContext(ctx context.Context) (*Logger, bool) {
	logger, ok := ctx.Value(loggerContextKey{}).(*Logger)
	return logger, ok
}
