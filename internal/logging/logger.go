// Package logging defines the structured-logging interface used across
// stampcard. The only implementation wraps log/slog.
package logging

import "context"

// Logger takes a message plus key/value pairs, the way slog does:
//
//	log.Info(ctx, "stamp added", "username", name, "stamps", n)
//
// The server writes JSON, the CLI writes logfmt to stderr.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}

var _ Logger = (*SlogLogger)(nil)
