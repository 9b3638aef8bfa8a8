package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Форматы вывода логов.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel определяет уровень логирования по строке.
// Возможные значения: DEBUG, INFO, WARN, ERROR (регистр не важен).
// По умолчанию: INFO
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogOptions — параметры логгера.
type LogOptions struct {
	// Level — уровень логирования (LOG_LEVEL).
	Level string

	// Format — "json" или "text" (LOG_FORMAT, default: text).
	Format string

	// Writer — куда писать логи (default: os.Stderr).
	Writer io.Writer

	// NoColor отключает цвета в текстовом формате (NO_COLOR).
	NoColor bool
}

// NewLogger создаёт логгер.
//
// Формат вывода:
//   - "json" — JSON для сбора логов
//   - иначе — цветной текст через tint для терминала
//
// Отчёты о run идут в stdout, поэтому логи пишутся в stderr.
func NewLogger(opts LogOptions) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	if strings.EqualFold(opts.Format, FormatJSON) {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: level == slog.LevelDebug,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  level == slog.LevelDebug,
			TimeFormat: "15:04:05.000",
			NoColor:    opts.NoColor,
		})
	}

	return slog.New(handler)
}

// SetupLogger создаёт логгер и делает его глобальным.
func SetupLogger(opts LogOptions) *slog.Logger {
	logger := NewLogger(opts)
	slog.SetDefault(logger)
	return logger
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger — ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRunID возвращает логгер с добавленным run_id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With("run_id", runID)
}

// WithCommand возвращает логгер с полями команды.
func WithCommand(logger *slog.Logger, index int, resultsID, objectType, method string) *slog.Logger {
	return logger.With(
		"index", index,
		"results_id", resultsID,
		"object_type", objectType,
		"method", method,
	)
}
