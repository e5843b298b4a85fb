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

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/contact"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/locations"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/locale"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
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
		Console:     cfg.App.ConsoleLogs(),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing clients", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	locales, err := locale.NewResolver(cfg.Locale.Default, cfg.Locale.Supported)
	if err != nil {
		logg.Error(context.Background(), "failed to build locale resolver", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	exitOnErr(logg, "failed to create auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		Locales:        locales,
		PasswordConfig: cfg.Password,
	})
	exitOnErr(logg, "failed to create register service", err)

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		Locales:        locales,
		PasswordConfig: cfg.Password,
	})
	exitOnErr(logg, "failed to create users service", err)

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:          catalog.NewRepository(dbClient.DB()),
		DefaultLocale: locales.Default(),
	})
	exitOnErr(logg, "failed to create catalog service", err)

	sink, err := cartSink(cfg, dbClient, redisClient)
	exitOnErr(logg, "failed to create cart sink", err)

	removalRule, err := cart.ParseRemovalRule(cfg.Cart.RemovalRule)
	exitOnErr(logg, "invalid cart removal rule", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Sink:        sink,
		Catalog:     catalogService,
		RemovalRule: removalRule,
		Metrics:     metrics.NewCartMetrics(registry),
		Logger:      logg,
	})
	exitOnErr(logg, "failed to create cart service", err)

	discountService, err := discounts.NewService(discounts.ServiceParams{
		Repo: discounts.NewRepository(dbClient.DB()),
	})
	exitOnErr(logg, "failed to create discount service", err)

	locationService, err := locations.NewService(locations.NewRepository(dbClient.DB()))
	exitOnErr(logg, "failed to create locations service", err)

	contactService, err := contact.NewService(contact.ServiceParams{
		Repo:    contact.NewRepository(dbClient.DB()),
		Locales: locales,
	})
	exitOnErr(logg, "failed to create contact service", err)

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		metrics.NewHTTPMetrics(registry),
		locales,
		sessionManager,
		authService,
		registerService,
		usersService,
		catalogService,
		cartService,
		discountService,
		locationService,
		contactService,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", router)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_backend": cfg.Cart.Backend,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}

// cartSink picks where cart snapshots live. The db backend relies on the cron worker to
// purge idle rows; redis expires them with SnapshotTTL.
func cartSink(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client) (cart.Sink, error) {
	switch cfg.Cart.Backend {
	case config.CartBackendDB:
		return cart.NewDBSink(dbClient.DB())
	case config.CartBackendMemory:
		return cart.NewMemorySink(), nil
	default:
		return cart.NewRedisSink(redisClient, cfg.Cart.SnapshotTTL)
	}
}

func exitOnErr(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
