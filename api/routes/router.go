package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/counterline/counterline-backend/api/controllers"
	authcontrollers "github.com/counterline/counterline-backend/api/controllers/auth"
	bannercontrollers "github.com/counterline/counterline-backend/api/controllers/banners"
	cartcontrollers "github.com/counterline/counterline-backend/api/controllers/cart"
	catalogcontrollers "github.com/counterline/counterline-backend/api/controllers/catalog"
	clientcontrollers "github.com/counterline/counterline-backend/api/controllers/clients"
	ordercontrollers "github.com/counterline/counterline-backend/api/controllers/orders"
	usercontrollers "github.com/counterline/counterline-backend/api/controllers/users"
	"github.com/counterline/counterline-backend/api/middleware"
	"github.com/counterline/counterline-backend/internal/banners"
	"github.com/counterline/counterline-backend/internal/cart"
	"github.com/counterline/counterline-backend/internal/catalog"
	"github.com/counterline/counterline-backend/internal/clients"
	"github.com/counterline/counterline-backend/internal/orders"
	"github.com/counterline/counterline-backend/internal/users"
	"github.com/counterline/counterline-backend/pkg/auth/session"
	"github.com/counterline/counterline-backend/pkg/config"
	"github.com/counterline/counterline-backend/pkg/db"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/counterline/counterline-backend/pkg/logger"
	"github.com/counterline/counterline-backend/pkg/metrics"
	"github.com/counterline/counterline-backend/pkg/redis"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services groups the domain services mounted on the router.
type Services struct {
	Users   users.Service
	Clients clients.Service
	Catalog catalog.Service
	Cart    cart.Service
	Orders  orders.Service
	Banners banners.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore RedisStore,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		"phoneNo",
		cfg.AuthRateLimit.OTPPhoneLimit,
	)
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		"userName",
		cfg.AuthRateLimit.LoginUserNameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisStore))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	authenticated := middleware.Auth(cfg.JWT, sessions, logg)
	clientOnly := middleware.RequireRole(logg, enums.RoleClient)
	userOnly := middleware.RequireRole(logg, enums.RoleUser)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthRateLimit(otpPolicy, redisStore, logg))
				r.Post("/sendOtp", usercontrollers.SendOTP(svc.Users, logg))
				r.Post("/verifyOtp", usercontrollers.VerifyOTP(svc.Users, logg))
				r.Post("/resendOtp", usercontrollers.ResendOTP(svc.Users, logg))
			})
			r.Post("/fetchClient", clientcontrollers.PublicInfo(svc.Clients, logg))
		})

		r.With(authenticated).Post("/auth/logout", authcontrollers.Logout(svc.Users, logg))

		r.Route("/client", func(r chi.Router) {
			r.Post("/register", clientcontrollers.Register(svc.Clients, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisStore, logg)).Post("/login", clientcontrollers.Login(svc.Clients, logg))
			r.Group(func(r chi.Router) {
				r.Use(authenticated, clientOnly)
				r.Post("/toggleIsActive", clientcontrollers.ToggleActive(svc.Clients, logg))
				r.Post("/updateConvenienceFee", clientcontrollers.UpdateConvenienceFee(svc.Clients, logg))
			})
		})

		r.Route("/category", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/list", catalogcontrollers.ListCategories(svc.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(clientOnly)
				r.Post("/create", catalogcontrollers.CreateCategory(svc.Catalog, logg))
				r.Post("/update/{id}", catalogcontrollers.UpdateCategory(svc.Catalog, logg))
				r.Post("/delete/{id}", catalogcontrollers.DeleteCategory(svc.Catalog, logg))
			})
		})

		r.Route("/item", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/listByCategory", catalogcontrollers.ListByCategory(svc.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(clientOnly)
				r.Post("/create", catalogcontrollers.CreateItem(svc.Catalog, logg))
				r.Post("/update/{id}", catalogcontrollers.UpdateItem(svc.Catalog, logg))
				r.Post("/delete/{id}", catalogcontrollers.DeleteItem(svc.Catalog, logg))
				r.Post("/toggleIsPublished", catalogcontrollers.TogglePublished(svc.Catalog, logg))
				r.Post("/toggleIsAvailable", catalogcontrollers.ToggleAvailable(svc.Catalog, logg))
				r.Post("/listingItems", catalogcontrollers.ListGrouped(svc.Catalog, logg))
			})
		})

		r.Route("/banner", func(r chi.Router) {
			r.Post("/fetchBanners", bannercontrollers.FetchActive(svc.Banners, logg))
			r.Group(func(r chi.Router) {
				r.Use(authenticated, clientOnly)
				r.Post("/create", bannercontrollers.Create(svc.Banners, logg))
				r.Post("/update/{id}", bannercontrollers.Update(svc.Banners, logg))
				r.Post("/delete/{id}", bannercontrollers.Delete(svc.Banners, logg))
				r.Post("/remove", bannercontrollers.Remove(svc.Banners, logg))
				r.Post("/listing", bannercontrollers.List(svc.Banners, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticated, userOnly)
			r.Post("/create", cartcontrollers.Add(svc.Cart, logg))
			r.Post("/update/{id}", cartcontrollers.SetQuantity(svc.Cart, logg))
			r.Post("/delete/{id}", cartcontrollers.Delete(svc.Cart, logg))
			r.Post("/removeItem", cartcontrollers.RemoveItem(svc.Cart, logg))
			r.Post("/listingCarts", cartcontrollers.View(svc.Cart, logg))
		})

		r.Route("/order", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/fetchOrderHistory", ordercontrollers.FetchHistory(svc.Orders, logg))
			r.Post("/getOrderDetails", ordercontrollers.Details(svc.Orders, logg))
			r.Post("/delete/{id}", ordercontrollers.Delete(svc.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(userOnly)
				r.With(middleware.Idempotency(redisStore, cfg.Orders.IdempotencyTTL, logg)).Post("/create", ordercontrollers.Create(svc.Orders, logg))
				r.Post("/ListingOrderByStatusOfUser", ordercontrollers.ListForUser(svc.Orders, logg))
				r.Post("/fetchOrder", ordercontrollers.FetchActive(svc.Orders, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(clientOnly)
				r.Post("/updateOrderStatus/{id}", ordercontrollers.UpdateStatus(svc.Orders, logg))
				r.Post("/ListingOrderByStatus", ordercontrollers.ListByStatus(svc.Orders, logg))
				r.Post("/fetchTotal", ordercontrollers.FetchTotal(svc.Orders, logg))
				r.Post("/statusHistory/{id}", ordercontrollers.StatusHistory(svc.Orders, logg))
			})
		})
	})

	return otelhttp.NewHandler(r, "counterline-api")
}
