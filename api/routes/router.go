package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/homeplate-backend/api/controllers"
	admincontrollers "github.com/angelmondragon/homeplate-backend/api/controllers/admin"
	authcontrollers "github.com/angelmondragon/homeplate-backend/api/controllers/auth"
	cartcontrollers "github.com/angelmondragon/homeplate-backend/api/controllers/cart"
	catalogcontrollers "github.com/angelmondragon/homeplate-backend/api/controllers/catalog"
	ordercontrollers "github.com/angelmondragon/homeplate-backend/api/controllers/orders"
	vendorcontrollers "github.com/angelmondragon/homeplate-backend/api/controllers/vendor"
	"github.com/angelmondragon/homeplate-backend/api/middleware"
	"github.com/angelmondragon/homeplate-backend/internal/auth"
	"github.com/angelmondragon/homeplate-backend/internal/cart"
	"github.com/angelmondragon/homeplate-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/homeplate-backend/internal/checkout"
	"github.com/angelmondragon/homeplate-backend/internal/media"
	"github.com/angelmondragon/homeplate-backend/internal/orders"
	"github.com/angelmondragon/homeplate-backend/internal/reviews"
	"github.com/angelmondragon/homeplate-backend/internal/users"
	"github.com/angelmondragon/homeplate-backend/pkg/config"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
	"github.com/angelmondragon/homeplate-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/homeplate-backend/pkg/redis"
)

// RedisStore is the slice of the Redis client the HTTP layer needs for readiness,
// idempotency and rate limiting.
type RedisStore interface {
	pkgredis.Pinger
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services bundles the domain services behind the HTTP surface.
type Services struct {
	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Users    users.Service
	Reviews  reviews.Service
	Media    media.Service
}

// NewRouter wires middleware and routes. A nil store disables readiness pings, idempotency and
// rate limiting. A nil registry disables /metrics and request metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store RedisStore,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	authPolicy := middleware.NewAuthRateLimitPolicy(
		"auth",
		cfg.RateLimit.AuthWindow,
		cfg.RateLimit.AuthLimit,
		cfg.RateLimit.AuthLimit,
	)
	reviewPolicy := middleware.NewAuthRateLimitPolicy(
		"review",
		cfg.RateLimit.ReviewWindow,
		cfg.RateLimit.ReviewLimit,
		0,
	)

	customerAuth := middleware.Auth(svcs.Auth, logg, authcontrollers.CustomerCookies.Token)
	adminAuth := middleware.Auth(svcs.Auth, logg, authcontrollers.AdminCookies.Token, authcontrollers.CustomerCookies.Token)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, store, logg))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.Idempotency(store, logg))
			r.With(middleware.AuthRateLimit(authPolicy, store, logg)).
				Post("/register", authcontrollers.AuthRegister(svcs.Auth, cfg.Session, logg))
			r.With(middleware.AuthRateLimit(authPolicy, store, logg)).
				Post("/login", authcontrollers.AuthLogin(svcs.Auth, cfg.Session, logg))
			r.With(middleware.AuthRateLimit(authPolicy, store, logg)).
				Post("/admin/login", authcontrollers.AdminAuthLogin(svcs.Auth, cfg.Session, logg))
			r.With(middleware.OptionalAuth(svcs.Auth, logg, authcontrollers.CustomerCookies.Token, authcontrollers.AdminCookies.Token)).
				Post("/logout", authcontrollers.AuthLogout(svcs.Auth, cfg.Session, logg))
			r.With(customerAuth).Get("/me", authcontrollers.AuthMe(logg))
		})

		// Public catalog.
		r.Get("/vendors", catalogcontrollers.ListVendors(svcs.Catalog, logg))
		r.Get("/vendors/{vendorId}", catalogcontrollers.VendorDetail(svcs.Catalog, logg))
		r.Get("/dishes", catalogcontrollers.ListDishes(svcs.Catalog, logg))
		r.Get("/dishes/{dishId}", catalogcontrollers.DishDetail(svcs.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(customerAuth)
			r.Use(middleware.Idempotency(store, logg))

			r.Route("/dishes/{dishId}/reviews", func(r chi.Router) {
				r.With(middleware.UserRateLimit(reviewPolicy, store, logg)).
					Post("/", catalogcontrollers.SubmitReview(svcs.Reviews, logg))
				r.Get("/eligibility", catalogcontrollers.ReviewEligibility(svcs.Reviews, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(svcs.Cart, logg))
				r.Delete("/", cartcontrollers.CartClear(svcs.Cart, logg))
				r.Post("/items", cartcontrollers.CartAddItem(svcs.Cart, logg))
				r.Patch("/items/{lineId}", cartcontrollers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{lineId}", cartcontrollers.CartRemoveItem(svcs.Cart, logg))
				r.Post("/coupon", cartcontrollers.CartApplyCoupon(svcs.Cart, logg))
				r.Put("/zipcode", cartcontrollers.CartSetZipcode(svcs.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(svcs.Orders, logg))
				r.Get("/group/{customerOrderId}", ordercontrollers.Group(svcs.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(svcs.Orders, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.Cancel(svcs.Orders, logg))
				r.Post("/{orderId}/received", ordercontrollers.Received(svcs.Orders, logg))
				r.Put("/{orderId}/refund", ordercontrollers.Refund(svcs.Orders, logg))
			})

			r.Route("/me", func(r chi.Router) {
				r.Get("/addresses", controllers.ListAddresses(svcs.Users, logg))
				r.Post("/addresses", controllers.AddAddress(svcs.Users, logg))
				r.Delete("/addresses/{addressId}", controllers.DeleteAddress(svcs.Users, logg))
				r.Put("/refund-details", controllers.UpdateRefundDetails(svcs.Users, logg))
			})

			r.Post("/media", controllers.MediaUpload(svcs.Media, logg))

			r.Route("/vendor", func(r chi.Router) {
				r.Post("/register", vendorcontrollers.Register(svcs.Catalog, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.VendorContext(svcs.Catalog, logg))
					r.Get("/me", vendorcontrollers.Me(logg))
					r.Put("/me", vendorcontrollers.UpdateSettings(svcs.Catalog, logg))
					r.Put("/me/payment-method", vendorcontrollers.UpdatePaymentMethod(svcs.Catalog, logg))

					r.Get("/dishes", vendorcontrollers.ListDishes(svcs.Catalog, logg))
					r.Post("/dishes", vendorcontrollers.CreateDish(svcs.Catalog, logg))
					r.Put("/dishes/{dishId}", vendorcontrollers.UpdateDish(svcs.Catalog, logg))
					r.Patch("/dishes/{dishId}/availability", vendorcontrollers.SetAvailability(svcs.Catalog, logg))

					r.Route("/orders", func(r chi.Router) {
						r.Get("/", ordercontrollers.VendorList(svcs.Orders, logg))
						r.Get("/{orderId}", ordercontrollers.VendorDetail(svcs.Orders, logg))
						r.Post("/{orderId}/decision", ordercontrollers.VendorOrderDecision(svcs.Orders, logg))
						r.Post("/{orderId}/ready", ordercontrollers.VendorReady(svcs.Orders, logg))
						r.Post("/{orderId}/cancel", ordercontrollers.VendorCancel(svcs.Orders, logg))
						r.Put("/{orderId}/payment-status", ordercontrollers.VendorPaymentStatus(svcs.Orders, logg))
					})
				})
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(adminAuth)
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.AdminList(svcs.Orders, logg))
			r.Post("/{orderId}/status", ordercontrollers.AdminStatus(svcs.Orders, logg))
			r.Put("/{orderId}/payment-status", ordercontrollers.AdminPaymentStatus(svcs.Orders, logg))
		})
		r.Route("/admins", func(r chi.Router) {
			r.Get("/", admincontrollers.ListAdmins(svcs.Users, logg))
			r.Post("/{userId}/verify", admincontrollers.VerifyAdmin(svcs.Users, logg))
			r.Delete("/{userId}", admincontrollers.DeleteAdmin(svcs.Users, logg))
		})
		r.Post("/vendors/{vendorId}/verify", admincontrollers.VerifyVendor(svcs.Catalog, logg))
	})

	return r
}
