package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/counterline/counterline-backend/api/routes"
	"github.com/counterline/counterline-backend/internal/audit"
	"github.com/counterline/counterline-backend/internal/banners"
	"github.com/counterline/counterline-backend/internal/cart"
	"github.com/counterline/counterline-backend/internal/catalog"
	"github.com/counterline/counterline-backend/internal/clients"
	"github.com/counterline/counterline-backend/internal/orders"
	"github.com/counterline/counterline-backend/internal/users"
	"github.com/counterline/counterline-backend/pkg/auth/session"
	"github.com/counterline/counterline-backend/pkg/config"
	"github.com/counterline/counterline-backend/pkg/db"
	"github.com/counterline/counterline-backend/pkg/logger"
	"github.com/counterline/counterline-backend/pkg/metrics"
	"github.com/counterline/counterline-backend/pkg/migrate"
	"github.com/counterline/counterline-backend/pkg/redis"
	"github.com/counterline/counterline-backend/pkg/tracing"
)

const serviceName = "counterline-api"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName, cfg.App.Env)
	requireResource(ctx, logg, "tracing", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	location, err := cfg.Orders.Location()
	requireResource(ctx, logg, "order timezone", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gdb := dbClient.DB()
	catalogRepo := catalog.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           users.NewRepository(gdb),
		Store:          redisClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		OTPConfig:      cfg.OTP,
	})
	requireResource(ctx, logg, "users service", err)

	clientsService, err := clients.NewService(clients.ServiceParams{
		Repo:           clients.NewRepository(gdb),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "clients service", err)

	catalogService, err := catalog.NewService(catalogRepo)
	requireResource(ctx, logg, "catalog service", err)

	cartService, err := cart.NewService(cartRepo, dbClient, catalogRepo)
	requireResource(ctx, logg, "cart service", err)

	auditService, err := audit.NewService(audit.NewRepository(gdb))
	requireResource(ctx, logg, "audit service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(gdb),
		Carts:    cartRepo,
		Tx:       dbClient,
		Fees:     clientsService,
		Pins:     clientsService,
		Audit:    auditService,
		Metrics:  metrics.NewOrderMetrics(registry),
		Logger:   logg,
		Location: location,
	})
	requireResource(ctx, logg, "orders service", err)

	bannersService, err := banners.NewService(banners.NewRepository(gdb))
	requireResource(ctx, logg, "banners service", err)

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sessionManager,
		registry,
		metrics.NewHTTPMetrics(registry),
		routes.Services{
			Users:   usersService,
			Clients: clientsService,
			Catalog: catalogService,
			Cart:    cartService,
			Orders:  ordersService,
			Banners: bannersService,
		},
	)

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		shutdownTracing(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if err != nil {
		logg.Error(serverCtx, "shutdown completed with errors", err)
		exitCode = 1
	} else {
		logg.Info(serverCtx, "api server stopped")
	}
	os.Exit(exitCode)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
