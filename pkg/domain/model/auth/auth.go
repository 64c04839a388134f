package auth

import (
	"context"
	"time"
)

// RoleAdmin is the only role the dashboard knows about.
const RoleAdmin = "admin"

// Claims is the authenticated identity carried by an admin token.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the claims grant admin access.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Session is the response of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ctxClaimsKey struct{}

// ContextWithClaims stores claims in the context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey{}, claims)
}

// ClaimsFromContext returns claims stored by ContextWithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ctxClaimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// Actor returns the subject of the claims in ctx, or "anonymous".
func Actor(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}
