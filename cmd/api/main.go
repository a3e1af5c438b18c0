package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/shopfront-backend/api/controllers"
	"github.com/angelmondragon/shopfront-backend/api/routes"
	"github.com/angelmondragon/shopfront-backend/internal/cart"
	"github.com/angelmondragon/shopfront-backend/internal/orders"
	"github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/shops"
	"github.com/angelmondragon/shopfront-backend/internal/tenant"
	"github.com/angelmondragon/shopfront-backend/pkg/auth/session"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	"github.com/angelmondragon/shopfront-backend/pkg/migrate"
	"github.com/angelmondragon/shopfront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "shopfront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopfront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, err := tenant.NewResolver(cfg.Tenant.RootDomain, cfg.Tenant.ExcludedPrefixes)
	if errors.Is(err, tenant.ErrRootDomainUnset) {
		if cfg.Tenant.RequireRootDomain {
			return err
		}
		logg.Warn(ctx, "tenant root domain not configured, subdomain routing disabled")
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics := metrics.NewDomain(registry)

	revoker, err := session.NewRevoker(redisClient)
	if err != nil {
		return err
	}

	shopService, err := shops.NewService(shops.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	catalog := products.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), shopService, catalog, domainMetrics)
	if err != nil {
		return err
	}
	trackingIDs, err := orders.NewTrackingIDGenerator(redisClient, cfg.Orders.TrackingIDBase)
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Store:               orders.NewRepository(dbClient.DB()),
		Tx:                  dbClient,
		Shops:               shopService,
		Catalog:             catalog,
		Baskets:             cartService,
		TrackingIDs:         trackingIDs,
		Metrics:             domainMetrics,
		Logger:              logg,
		MaxTrackingAttempts: cfg.Orders.TrackingIDMaxAttempts,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Params{
		Config:   cfg,
		Logger:   logg,
		Resolver: resolver,
		Ready: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		Cache:          redisClient,
		Sessions:       revoker,
		Shops:          shopService,
		Cart:           cartService,
		Orders:         orderService,
		HTTPMetrics:    metrics.NewHTTP(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	instance := os.Getenv("DYNO")
	if instance == "" {
		instance = "local"
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        server.Addr,
		"instance":    instance,
		"root_domain": resolver.RootDomain(),
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
