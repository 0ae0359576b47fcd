package session

import "context"

type contextKey struct{}

// WithID returns a copy of ctx carrying the session ID.
func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, contextKey{}, sid)
}

// IDFromContext returns the session ID stored by WithID, or "".
func IDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(contextKey{}).(string)
	return sid
}
