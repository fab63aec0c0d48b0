package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// SlogLogger is a JSON slog logger that stamps every record with the service
// name and, when an X-Ray segment is present on the context, the trace id.
type SlogLogger struct {
	logger *slog.Logger
}

func New(service string) *SlogLogger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &SlogLogger{logger: slog.New(h).With("service", service)}
}

func NewWithWriter(w io.Writer, level slog.Leveler) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(h)}
}

func (l *SlogLogger) enrichWithTraceID(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	seg := xray.GetSegment(ctx)
	if seg == nil || seg.TraceID == "" {
		return args
	}
	return append(args, "trace_id", seg.TraceID)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, l.enrichWithTraceID(ctx, args)...)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, l.enrichWithTraceID(ctx, args)...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, l.enrichWithTraceID(ctx, args)...)
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, l.enrichWithTraceID(ctx, args)...)
}
