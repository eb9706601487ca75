package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fooddelivery/internal/mw"
	"fooddelivery/internal/service"
)

type RouterConfig struct {
	Accounts   *service.AccountService
	Orders     *service.OrderService
	Catalog    *service.CatalogService
	Tokens     *TokenIssuer
	QR         service.QRGenerator
	Store      service.StoreAvailability
	Delivery   HealthChecker
	Limiter    *mw.RateLimiter
	JWTSecret  string
	CORSOrigin string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", LivenessHandler())

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", HealthHandler(cfg.Store, cfg.Delivery))

		r.Post("/auth/signup", SignupHandler(cfg.Accounts, cfg.Tokens))
		r.Post("/auth/login", LoginHandler(cfg.Accounts, cfg.Tokens))

		r.Get("/restaurants", ListRestaurantsHandler(cfg.Catalog))
		r.Get("/restaurants/{restaurantId}", GetRestaurantHandler(cfg.Catalog))
		r.Get("/restaurants/{restaurantId}/menu", GetMenuHandler(cfg.Catalog))

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.JWTSecret))

			r.Get("/auth/profile", GetProfileHandler(cfg.Accounts))
			r.Patch("/auth/profile", UpdateProfileHandler(cfg.Accounts))

			r.Post("/users/addresses", AddAddressHandler(cfg.Accounts))
			r.Patch("/users/addresses/{addressId}", UpdateAddressHandler(cfg.Accounts))
			r.Delete("/users/addresses/{addressId}", DeleteAddressHandler(cfg.Accounts))

			r.Post("/orders", CreateOrderHandler(cfg.Orders))
			r.Get("/orders", ListOrdersHandler(cfg.Orders))
			r.Get("/orders/stats", OrderStatsHandler(cfg.Orders))
			r.Get("/orders/{orderId}", GetOrderHandler(cfg.Orders))
			r.Get("/orders/{orderId}/qrcode", OrderQRCodeHandler(cfg.Orders, cfg.QR))
			r.Patch("/orders/{orderId}/status", UpdateOrderStatusHandler(cfg.Orders))
			r.Post("/orders/{orderId}/cancel", CancelOrderHandler(cfg.Orders))
		})
	})

	return r
}
