package webutil

import "context"

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID attaches the authenticated user's identity to the request
// context. Set by the auth middleware, read by protected handlers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's identity, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
