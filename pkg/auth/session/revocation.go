package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/auth"
)

type revocationStore interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationChecker exposes the read-only surface needed by middleware.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Revoker keeps a deny list of token ids until they would have expired anyway.
type Revoker struct {
	store revocationStore
	now   func() time.Time
}

// NewRevoker constructs a revocation list backed by Redis.
func NewRevoker(store revocationStore) (*Revoker, error) {
	if store == nil {
		return nil, fmt.Errorf("revocation store is required")
	}
	return &Revoker{store: store, now: time.Now}, nil
}

// Revoke denies the token for the remainder of its lifetime.
func (r *Revoker) Revoke(ctx context.Context, claims *auth.AccessTokenClaims) error {
	if claims == nil || strings.TrimSpace(claims.ID) == "" {
		return fmt.Errorf("token id is required")
	}
	return r.store.RevokeToken(ctx, claims.ID, claims.Remaining(r.now()))
}

// IsRevoked reports whether jti was revoked.
func (r *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, fmt.Errorf("token id is required")
	}
	return r.store.IsTokenRevoked(ctx, jti)
}
