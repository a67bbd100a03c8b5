package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// TokenKey is the context key for storing the raw Knora session token.
const TokenKey contextKey = "token"

// ContextWithToken returns a context carrying the session token. An empty
// token leaves the context unchanged.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, TokenKey, token)
}

// GetToken retrieves the raw session token from the context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
