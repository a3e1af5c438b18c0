package middleware

import (
	"net/http"

	"github.com/angelmondragon/shopfront-backend/internal/tenant"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

// Tenant rewrites requests addressed to <shop>.<root> onto the /shops/<shop>
// routes. It must run before routing.
func Tenant(resolver *tenant.Resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if resolver == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := resolver.Resolve(r.Host, r.URL.Path)
			if !res.Rewritten {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithSubdomain(r.Context(), res.Subdomain)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"subdomain":     res.Subdomain,
					"original_path": r.URL.Path,
				})
				logg.Debug(ctx, "tenant.rewrite")
			}

			r2 := r.Clone(ctx)
			r2.URL.Path = res.Path
			r2.URL.RawPath = ""
			next.ServeHTTP(w, r2)
		})
	}
}
