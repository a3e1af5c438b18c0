package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shopfront-backend/api/controllers"
	"github.com/angelmondragon/shopfront-backend/api/middleware"
	"github.com/angelmondragon/shopfront-backend/internal/cart"
	"github.com/angelmondragon/shopfront-backend/internal/orders"
	"github.com/angelmondragon/shopfront-backend/internal/shops"
	"github.com/angelmondragon/shopfront-backend/internal/tenant"
	"github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/auth/session"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/shopfront-backend/pkg/redis"
)

// CacheStore is the Redis surface used by request middleware.
type CacheStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type sessionRevoker interface {
	session.RevocationChecker
	Revoke(ctx context.Context, claims *auth.AccessTokenClaims) error
}

// Params bundles everything the HTTP surface is built from.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Resolver *tenant.Resolver
	Ready    map[string]controllers.Pinger
	Cache    CacheStore
	Sessions sessionRevoker
	Shops    shops.Service
	Cart     cart.Service
	Orders   orders.Service
	// HTTPMetrics and MetricsHandler are optional.
	HTTPMetrics    *metrics.HTTP
	MetricsHandler http.Handler
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)
	idempotent := middleware.Idempotency(p.Cache, logg)

	cartLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("cart", cfg.RateLimit.CartWindow, cfg.RateLimit.CartLimit), p.Cache, logg)
	checkoutLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("checkout", cfg.RateLimit.CheckoutWindow, cfg.RateLimit.CheckoutLimit), p.Cache, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS, cfg.Tenant.RootDomain),
		middleware.Tenant(p.Resolver, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Ready, logg))
	})
	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	r.Route("/shops/{subdomain}", func(r chi.Router) {
		r.Get("/", controllers.ShopGet(p.Shops, logg))

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth, idempotent, checkoutLimit)
			r.Post("/orders", controllers.OrderCheckout(p.Shops, p.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, idempotent)
			r.Get("/status", controllers.ShopStatus(p.Shops, logg))
			r.Get("/cart", controllers.TenantCartGet(p.Shops, p.Cart, logg))
			r.With(cartLimit).Post("/cart", controllers.TenantCartAddItem(p.Shops, p.Cart, logg))
			r.Get("/orders", controllers.OrderList(p.Shops, p.Orders, logg))
			r.Get("/orders/{trackingId}", controllers.OrderGet(p.Shops, p.Orders, logg))
			r.Delete("/orders/{trackingId}", controllers.OrderCancel(p.Shops, p.Orders, logg))
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(requireAuth, idempotent)
		r.Get("/", controllers.CartGet(p.Cart, logg))
		r.With(cartLimit).Post("/", controllers.CartAddItem(p.Cart, logg))
		r.Delete("/", controllers.CartRemoveBasket(p.Cart, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireAuth, idempotent)
		r.Post("/auth/logout", controllers.AuthLogout(p.Sessions, logg))
		r.Post("/shops", controllers.ShopRegister(p.Shops, logg))
		r.Get("/shops/{shopId}/orders", controllers.ShopOrderList(p.Orders, logg))
		r.Post("/shops/{shopId}/orders/{trackingId}/fulfillment", controllers.OrderFulfillment(p.Orders, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth, middleware.RequireAdmin(logg), idempotent)
		r.Patch("/shops/{shopId}/status", controllers.AdminShopStatus(p.Shops, logg))
	})

	return r
}
