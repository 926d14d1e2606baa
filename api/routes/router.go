package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/posadmin-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/posadmin-backend/api/controllers/orders"
	"github.com/angelmondragon/posadmin-backend/api/middleware"
	"github.com/angelmondragon/posadmin-backend/internal/auth"
	"github.com/angelmondragon/posadmin-backend/internal/customers"
	"github.com/angelmondragon/posadmin-backend/internal/orders"
	products "github.com/angelmondragon/posadmin-backend/internal/products"
	"github.com/angelmondragon/posadmin-backend/internal/stats"
	"github.com/angelmondragon/posadmin-backend/internal/stock"
	"github.com/angelmondragon/posadmin-backend/pkg/auth/session"
	"github.com/angelmondragon/posadmin-backend/pkg/config"
	"github.com/angelmondragon/posadmin-backend/pkg/enums"
	"github.com/angelmondragon/posadmin-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/posadmin-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type redisStore interface {
	pinger
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Auth      auth.Service
	Register  auth.RegisterService
	Customers customers.Service
	Products  products.Service
	Orders    orders.Service
	Stock     stock.Service
	Stats     stats.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	redisClient redisStore,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)
	idempotent := middleware.Idempotency(redisClient, cfg.Idempotency.TTL, logg)
	adminOnly := middleware.RequireRole(enums.UserRoleAdmin, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svc.Register, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
			r.Get("/me", controllers.AuthMe(svc.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomersList(svc.Customers, logg))
			r.Post("/", controllers.CustomerCreate(svc.Customers, logg))
			r.Get("/{customerId}", controllers.CustomerGet(svc.Customers, logg))
			r.Put("/{customerId}", controllers.CustomerUpdate(svc.Customers, logg))
			r.Delete("/{customerId}", controllers.CustomerDelete(svc.Customers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(svc.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(svc.Products, logg))
			r.With(adminOnly).Post("/", controllers.ProductCreate(svc.Products, logg))
			r.With(adminOnly).Put("/{productId}", controllers.ProductUpdate(svc.Products, logg))
			r.With(adminOnly).Delete("/{productId}", controllers.ProductDelete(svc.Products, logg))
			r.With(adminOnly).Patch("/{productId}/status", controllers.ProductToggleStatus(svc.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(svc.Orders, logg))
			r.With(idempotent).Post("/", ordercontrollers.Place(svc.Orders, svc.Customers, logg))
			r.Get("/{orderId}", ordercontrollers.Get(svc.Orders, logg))
		})

		r.Route("/stock-entries", func(r chi.Router) {
			r.Get("/", controllers.StockEntriesList(svc.Stock, logg))
			r.With(idempotent).Post("/", controllers.StockEntryCreate(svc.Stock, logg))
			r.Get("/{entryId}", controllers.StockEntryGet(svc.Stock, logg))
			r.Patch("/{entryId}", controllers.StockEntryUpdateNote(svc.Stock, logg))
			r.Delete("/{entryId}", controllers.StockEntryDelete(svc.Stock, logg))
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", controllers.StatsOverview(svc.Stats, logg))
			r.Get("/inventory", controllers.StatsInventory(svc.Stats, logg))
			r.Get("/customers/{customerId}/history", controllers.StatsCustomerHistory(svc.Stats, logg))
		})
	})

	return r
}
