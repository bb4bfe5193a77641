package content

import "context"

// RequestIDHeader carries the inbound request id to the content backend so both
// services log the same id for one customer action.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID stores the id forwarded on every content call made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the forwarded id, empty when none was set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
