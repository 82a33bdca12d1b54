package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/akolanti/DocRAG/internal/config"
)

// Logger resolves the default handler on every call, so package level loggers pick up Init.
type Logger struct {
	attrs []any
}

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter installs the default handler writing to w. The CLI points this at stderr.
func InitWithWriter(w io.Writer) {
	options := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	var handler slog.Handler
	if config.IS_PROD {
		options.Level = config.LOG_LEVEL_PROD
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

// SetLevel replaces the default handler with a text handler at the given level.
func SetLevel(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func NewLogger(section string) *Logger {
	return &Logger{attrs: []any{"component", section}}
}

func (l *Logger) inner() *slog.Logger {
	return slog.Default().With(l.attrs...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !slog.Default().Enabled(context.Background(), level) {
		return
	}
	l.inner().Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	return &Logger{attrs: append(attrs, args...)}
}

// WithTrace attaches the request trace id when the context carries one.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	trace, ok := ctx.Value(config.TRACE_ID_KEY).(string)
	if !ok || trace == "" {
		return l
	}
	return l.With("traceId", trace)
}
