package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smarthome-be/internal/auth"
	"smarthome-be/internal/cache"
	"smarthome-be/internal/catalog"
	"smarthome-be/internal/checkout"
	"smarthome-be/internal/config"
	"smarthome-be/internal/db"
	"smarthome-be/internal/email"
	"smarthome-be/internal/logger"
	"smarthome-be/internal/metrics"
	"smarthome-be/internal/middleware"
	"smarthome-be/internal/notification"
	"smarthome-be/internal/order"
	"smarthome-be/internal/tracing"
	"smarthome-be/internal/web"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	orderCacheTTL = 5 * time.Minute
	adminTokenTTL = 12 * time.Hour
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	_, shutdownTracing, err := tracing.Init(log, tracing.Config{
		ServiceName: "smarthome-be",
		Host:        cfg.OTelHost,
		Probability: 1,
	})
	if err != nil {
		log.Fatal("failed to init tracing", zap.Error(err))
	}

	database := db.InitDB(cfg)
	defer database.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	srv, limiter, err := newServer(cfg, database, rdb, log)
	if err != nil {
		log.Fatal("failed to build server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go limiter.Run(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr), zap.String("site", cfg.SiteURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stop
	log.Info("shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}
	log.Info("server exited")
}

// newServer wires storage, notification and the storefront. rdb may be nil,
// in which case orders are cached in process.
func newServer(cfg *config.Config, database *sql.DB, rdb *redis.Client, log *zap.Logger) (*web.Server, *middleware.RateLimiter, error) {
	templates, err := web.LoadEmbedded()
	if err != nil {
		return nil, nil, err
	}

	checks := map[string]web.ReadinessCheck{"database": database.PingContext}

	var orderCache cache.Cache = cache.NewMemoryCache()
	if rdb != nil {
		rc := cache.NewRedisCache(rdb, "smarthome:")
		orderCache = rc
		checks["redis"] = rc.Ping
	}
	repo := order.NewCachedRepository(order.NewRepository(database), orderCache, orderCacheTTL)

	sender := notification.NewSender(
		email.New(cfg.ResendAPIKey, log),
		notification.Branding{BrandName: cfg.BrandName, WhishPhone: cfg.WhishPhone, Currency: cfg.Currency},
		cfg.EmailFrom,
		cfg.AdminEmail,
	)
	orders := order.NewService(repo, sender, order.Config{
		Prefix:   cfg.OrderPrefix,
		Currency: cfg.Currency,
	})

	limiter := middleware.NewRateLimiter()
	srv := web.NewServer(web.Config{
		Brand:             cfg.BrandName,
		Currency:          cfg.Currency,
		WhishPhone:        cfg.WhishPhone,
		SiteURL:           cfg.SiteURL,
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		CSRFKey:           cfg.CSRFKey,
		CookieSecure:      cfg.CookieSecure,
		TrustedOrigins:    trustedOrigins(cfg.SiteURL),
	}, web.Deps{
		Orders:    orders,
		Checkout:  checkout.NewController(orders, cfg.WhishPhone, log),
		Catalog:   catalog.New(cfg.StorefrontDomain, cfg.StorefrontToken, cfg.StorefrontAPIVersion),
		Sessions:  web.NewSessionStore(cfg.SessionKey, cfg.CookieSecure),
		Templates: templates,
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, adminTokenTTL),
		Limiter:   limiter,
		Checks:    checks,
		Metrics:   metrics.Default,
	})
	return srv, limiter, nil
}

// trustedOrigins lists the hosts whose Referer passes the CSRF origin check.
func trustedOrigins(siteURL string) []string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
