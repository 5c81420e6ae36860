package database

import (
	"context"
	"time"
)

type contextKey string

const (
	queryTimeoutKey   contextKey = "db_query_timeout"
	executeTimeoutKey contextKey = "db_execute_timeout"
)

// WithQueryTimeout overrides the default deadline of read queries run with ctx.
func WithQueryTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, queryTimeoutKey, d)
}

// WithExecuteTimeout overrides the default deadline of writes run with ctx.
func WithExecuteTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, executeTimeoutKey, d)
}

// withTimeout applies the timeout stored under key, or def when none is set.
func withTimeout(ctx context.Context, def time.Duration, key contextKey) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := def
	if v, ok := ctx.Value(key).(time.Duration); ok && v > 0 {
		timeout = v
	}
	return context.WithTimeout(ctx, timeout)
}
