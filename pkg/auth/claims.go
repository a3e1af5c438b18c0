package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	IsAdmin bool
	JTI     string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

// Remaining returns how long the token stays valid after now.
func (c *AccessTokenClaims) Remaining(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	if left := c.ExpiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}

// Identity is the verified caller carried on the request context.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
	// TokenID is the jti of the presented token.
	TokenID string
}

// Identity extracts the caller identity from verified claims.
func (c *AccessTokenClaims) Identity() Identity {
	return Identity{UserID: c.UserID, IsAdmin: c.IsAdmin, TokenID: c.ID}
}
