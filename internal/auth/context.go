package auth

import "context"

type contextKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok
}

// DevClaims are attached to every request when auth is disabled.
func DevClaims() *Claims {
	return &Claims{Subject: DevUser, Name: DevUser, Issuer: DefaultIssuer, Audience: DefaultAudience}
}
