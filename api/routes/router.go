package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/contact"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/locations"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/locale"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type redisStore interface {
	middleware.IdempotencyStore
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient redisStore,
	httpMetrics *metrics.HTTPMetrics,
	locales *locale.Resolver,
	sessionManager sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	usersService users.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	discountService discounts.Service,
	locationService locations.Service,
	contactService contact.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Locale(locales, logg),
	)

	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)
	contactPolicy := middleware.NewRateLimitPolicy(
		"contact",
		cfg.RateLimit.ContactWindow,
		cfg.RateLimit.ContactIPLimit,
		cfg.RateLimit.ContactEmailLimit,
	)

	optionalAuth := middleware.OptionalAuth(cfg.JWT, sessionManager, logg)
	requireAuth := middleware.Auth(cfg.JWT, sessionManager, logg)
	idempotency := middleware.Idempotency(redisClient, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisClient,
		}, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.RateLimit(registerPolicy, redisClient, logg), idempotency).Post("/register", controllers.AuthRegister(registerService, authService, logg))
			r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(sessionManager, usersService, cfg.JWT, logg))
		})

		r.Get("/products", controllers.ProductsList(catalogService, logg))
		r.Get("/products/{slug}", controllers.ProductGet(catalogService, logg))
		r.Post("/discounts/validate", controllers.DiscountValidate(discountService, logg))
		r.Get("/locations", controllers.LocationsList(locationService, logg))

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth, middleware.CartOwner(logg), idempotency)
			r.Get("/cart", controllers.CartGet(cartService, discountService, logg))
			r.Delete("/cart", controllers.CartClear(cartService, logg))
			r.Post("/cart/items", controllers.CartAddItem(cartService, logg))
			r.Post("/cart/items/decrement", controllers.CartDecrementItem(cartService, logg))
			r.Delete("/cart/items", controllers.CartRemoveItem(cartService, logg))
		})

		r.With(optionalAuth, middleware.RateLimit(contactPolicy, redisClient, logg), idempotency).
			Post("/contact", controllers.ContactSubmit(contactService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, idempotency)
			r.Get("/profile", controllers.ProfileGet(usersService, logg))
			r.Patch("/profile", controllers.ProfileUpdate(usersService, logg))
			r.Post("/profile/password", controllers.ProfileChangePassword(usersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, redisClient, logg)).Post("/auth/login", controllers.AdminAuthLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/contact-messages", controllers.AdminContactMessagesList(contactService, logg))
		})
	})

	return r
}
