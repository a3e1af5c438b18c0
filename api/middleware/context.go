package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopfront-backend/pkg/auth"
)

type contextKey string

const (
	ctxIdentity  contextKey = "identity"
	ctxClaims    contextKey = "claims"
	ctxSubdomain contextKey = "tenant_subdomain"
)

// WithIdentity injects the verified caller into the context.
func WithIdentity(ctx context.Context, claims *auth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxClaims, claims)
	return context.WithValue(ctx, ctxIdentity, claims.Identity())
}

// IdentityFromContext returns the caller, if the request was authenticated.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	if ctx == nil {
		return auth.Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(auth.Identity)
	return id, ok && id.UserID != uuid.Nil
}

// ClaimsFromContext returns the verified token claims.
func ClaimsFromContext(ctx context.Context) *auth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(ctxClaims).(*auth.AccessTokenClaims)
	return claims
}

func UserIDFromContext(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.UserID.String()
	}
	return ""
}

// WithSubdomain records the tenant label the request was addressed to.
func WithSubdomain(ctx context.Context, subdomain string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSubdomain, subdomain)
}

func SubdomainFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSubdomain).(string); ok {
		return v
	}
	return ""
}
