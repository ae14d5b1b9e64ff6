package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/akolanti/ogtriage/internal/config"
)

type Logger struct {
	inner *slog.Logger
}

// Init installs the process wide handler. JSON in prod, text otherwise.
func Init(isProd bool, level string) {
	InitWithWriter(os.Stdout, isProd, level)
}

func InitWithWriter(w io.Writer, isProd bool, level string) {
	options := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if isProd || config.IS_PROD {
		if level == "" {
			options.Level = config.LOG_LEVEL_PROD
		}
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// WithTrace attaches the request trace id carried in ctx, if any.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	trace := TraceID(ctx)
	if trace == "" {
		return l
	}
	return l.With("traceId", trace)
}

// TraceID never panics on a missing or mistyped value.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func WithTraceID(ctx context.Context, trace string) context.Context {
	return context.WithValue(ctx, config.TRACE_ID_KEY, trace)
}
