package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
)

// CORS applies the configured origins plus every https shop subdomain of
// rootDomain.
func CORS(cfg config.CORSConfig, rootDomain string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   AllowedOrigins(cfg, rootDomain),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// AllowedOrigins returns the origin list handed to the CORS handler.
func AllowedOrigins(cfg config.CORSConfig, rootDomain string) []string {
	origins := append([]string(nil), cfg.AllowedOrigins...)
	if rootDomain != "" {
		origins = append(origins, "https://"+rootDomain, "https://*."+rootDomain)
	}
	return origins
}
