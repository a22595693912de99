package session

import "context"

type ctxKey int

const debuggingKey ctxKey = iota

// WithDebugging marks requests issued in debugging mode; searches then ask the
// accessibility feed for related source records.
func WithDebugging(ctx context.Context, on bool) context.Context {
	return context.WithValue(ctx, debuggingKey, on)
}

func debugging(ctx context.Context) bool {
	on, _ := ctx.Value(debuggingKey).(bool)
	return on
}
