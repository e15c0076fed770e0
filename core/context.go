package core

import "context"

// Context keys for run options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	runKeyKey         contextKey = "runKey"
)

// WithSuppressHeader disables the progress header, for callers that own stdout and stderr.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithRunKey pins the key a run is recorded under in the history store.
func WithRunKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, runKeyKey, key)
}

// getRunKey returns the pinned run key, if any.
func getRunKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(runKeyKey).(string)
	return key, ok && key != ""
}
