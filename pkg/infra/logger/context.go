package logger

import (
	"context"

	"github.com/kart-io/logger"
)

func withContext(ctx context.Context, keysAndValues []interface{}) []interface{} {
	fields := Fields(ctx)
	if len(fields) == 0 {
		return keysAndValues
	}
	return append(fields, keysAndValues...)
}

// Debugw logs at debug level with the context fields prepended.
func Debugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	logger.Debugw(msg, withContext(ctx, keysAndValues)...)
}

// Infow logs at info level with the context fields prepended.
func Infow(ctx context.Context, msg string, keysAndValues ...interface{}) {
	logger.Infow(msg, withContext(ctx, keysAndValues)...)
}

// Warnw logs at warn level with the context fields prepended.
func Warnw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	logger.Warnw(msg, withContext(ctx, keysAndValues)...)
}

// Errorw logs at error level with the context fields prepended.
func Errorw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	logger.Errorw(msg, withContext(ctx, keysAndValues)...)
}
