package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shopfront-backend/api/middleware"
	"github.com/angelmondragon/shopfront-backend/api/responses"
	"github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

type tokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.AccessTokenClaims) error
}

// AuthLogout revokes the presented access token for the rest of its lifetime.
func AuthLogout(revoker tokenRevoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if revoker == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "session revoker unavailable"))
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeUnauthorized, "missing credentials"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := revoker.Revoke(r.Context(), claims); err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeDependency, err, "revoke session"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
