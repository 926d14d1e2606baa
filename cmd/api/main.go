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

	"github.com/angelmondragon/posadmin-backend/api/routes"
	"github.com/angelmondragon/posadmin-backend/internal/auth"
	"github.com/angelmondragon/posadmin-backend/internal/customers"
	"github.com/angelmondragon/posadmin-backend/internal/orders"
	product "github.com/angelmondragon/posadmin-backend/internal/products"
	"github.com/angelmondragon/posadmin-backend/internal/stats"
	"github.com/angelmondragon/posadmin-backend/internal/stock"
	"github.com/angelmondragon/posadmin-backend/internal/users"
	"github.com/angelmondragon/posadmin-backend/pkg/auth/session"
	"github.com/angelmondragon/posadmin-backend/pkg/config"
	"github.com/angelmondragon/posadmin-backend/pkg/db"
	"github.com/angelmondragon/posadmin-backend/pkg/logger"
	"github.com/angelmondragon/posadmin-backend/pkg/metrics"
	"github.com/angelmondragon/posadmin-backend/pkg/migrate"
	"github.com/angelmondragon/posadmin-backend/pkg/outbox"
	"github.com/angelmondragon/posadmin-backend/pkg/redis"
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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	services, err := buildServices(cfg, logg, dbClient, sessionManager, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Dialect(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(serverCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessions *session.Manager, reg prometheus.Registerer) (routes.Services, error) {
	conn := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	productRepo := product.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	customerService, err := customers.NewService(customers.NewRepository(conn), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	productService, err := product.NewService(productRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	orderService, err := orders.NewService(
		orders.NewRepository(conn),
		orders.ProductStoresFrom(productRepo),
		dbClient,
		outboxSvc,
		logg,
		metrics.NewOrderMetrics(reg),
		orders.Options{PlacementTimeout: cfg.Orders.PlacementTimeout},
	)
	if err != nil {
		return routes.Services{}, err
	}

	stockService, err := stock.NewService(stock.NewRepository(conn), productRepo, dbClient, outboxSvc)
	if err != nil {
		return routes.Services{}, err
	}

	statsService, err := stats.NewService(stats.NewRepository(conn), cfg.Orders.LowStockThreshold)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authService,
		Register:  registerService,
		Customers: customerService,
		Products:  productService,
		Orders:    orderService,
		Stock:     stockService,
		Stats:     statsService,
	}, nil
}
