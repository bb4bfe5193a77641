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

	"github.com/angelmondragon/homeplate-backend/api/routes"
	"github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/internal/cart"
	"github.com/angelmondragon/homeplate-backend/internal/catalog"
	"github.com/angelmondragon/homeplate-backend/internal/checkout"
	"github.com/angelmondragon/homeplate-backend/internal/media"
	"github.com/angelmondragon/homeplate-backend/internal/orders"
	"github.com/angelmondragon/homeplate-backend/internal/pricing"
	"github.com/angelmondragon/homeplate-backend/internal/reviews"
	"github.com/angelmondragon/homeplate-backend/internal/users"
	"github.com/angelmondragon/homeplate-backend/pkg/auth/session"
	"github.com/angelmondragon/homeplate-backend/pkg/config"
	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/instance"
	"github.com/angelmondragon/homeplate-backend/pkg/lock"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
	"github.com/angelmondragon/homeplate-backend/pkg/metrics"
	"github.com/angelmondragon/homeplate-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	contentClient, err := content.NewClient(
		cfg.Content.BaseURL,
		cfg.Content.ServiceToken,
		content.WithTimeout(cfg.Content.Timeout),
		content.WithMetrics(metrics.NewContentMetrics(registry)),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create content client", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, redisClient, contentClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, redisClient, registry, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, contentClient *content.Client) (routes.Services, error) {
	identity, err := session.NewManager(redisClient, cfg.Session.IdentityCacheTTL)
	if err != nil {
		return routes.Services{}, err
	}
	locker, err := lock.NewLocker(redisClient)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Backend:   contentClient,
		Identity:  identity,
		JWTSecret: cfg.Content.JWTSecret,
		Logger:    logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	catalogService, err := catalog.NewService(contentClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cart.NewService(cartStore, catalogService, pricing.RatesFromConfig(cfg.Pricing))
	if err != nil {
		return routes.Services{}, err
	}

	checkoutService, err := checkout.NewService(cartService, catalogService, contentClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ordersService, err := orders.NewService(contentClient, locker, logg)
	if err != nil {
		return routes.Services{}, err
	}

	usersService, err := users.NewService(contentClient, locker, identity, logg)
	if err != nil {
		return routes.Services{}, err
	}

	reviewsService, err := reviews.NewService(contentClient, locker, logg)
	if err != nil {
		return routes.Services{}, err
	}

	mediaService, err := media.NewService(contentClient, int64(cfg.Content.MaxUploadMB)<<20, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:     authService,
		Catalog:  catalogService,
		Cart:     cartService,
		Checkout: checkoutService,
		Orders:   ordersService,
		Users:    usersService,
		Reviews:  reviewsService,
		Media:    mediaService,
	}, nil
}
