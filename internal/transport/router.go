// Package transport is the storefront's REST surface.
package transport

import (
	"net/http"
	"time"

	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/checkout"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/metrics"
	"nextgen-storefront/internal/middleware"
	"nextgen-storefront/internal/order"
	"nextgen-storefront/internal/product"
	"nextgen-storefront/internal/settings"
	"nextgen-storefront/internal/timer"
	"nextgen-storefront/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Products product.Service
	Carts    cart.Service
	Checkout checkout.Service
	Orders   order.Service
	Users    user.Service
	Settings settings.Service
	Timers   *timer.Tracker
	Counters *metrics.Counters
}

type Options struct {
	Secret         []byte
	AllowedOrigins []string
	// Limiter is optional; nil disables rate limiting.
	Limiter        *middleware.Limiter
	RequestTimeout time.Duration
	SecureCookies  bool
}

func NewRouter(svc Services, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Auth(opts.Secret))
	r.Use(middleware.GuestSession(opts.SecureCookies))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}
	r.Use(chimw.Timeout(opts.RequestTimeout))
	r.Use(chimw.Compress(5))

	catalog := &catalogHandler{products: svc.Products}
	carts := &cartHandler{carts: svc.Carts, products: svc.Products}
	buy := &checkoutHandler{checkout: svc.Checkout}
	orders := &orderHandler{orders: svc.Orders, timers: svc.Timers}
	users := &userHandler{users: svc.Users, secureCookies: opts.SecureCookies}
	prefs := &settingsHandler{settings: svc.Settings}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/debug/counters", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, svc.Counters.Snapshot())
	})

	r.Get("/products", catalog.List)
	r.Get("/products/{id}", catalog.Get)

	r.Post("/login", users.Login)
	r.Post("/signup", users.Signup)
	r.Post("/logout", users.Logout)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", carts.Get)
		r.Delete("/", carts.Clear)
		r.Get("/totals", buy.Quote)
		r.Post("/items", carts.Add)
		r.Post("/items/{id}/increase", carts.Increase)
		r.Post("/items/{id}/decrease", carts.decrease(cart.FloorAtOne))
		r.Delete("/items/{id}", carts.Remove)
	})
	r.Post("/mini-cart/items/{id}/decrease", carts.decrease(cart.RemoveAtZero))

	r.Post("/checkout", buy.Purchase)

	r.Get("/settings/dark-mode", prefs.GetDarkMode)
	r.Put("/settings/dark-mode", prefs.SetDarkMode)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/users/me", users.Profile)
		r.Put("/users/profile-picture", users.SetProfilePicture)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.List)
			r.Post("/{id}/receive", orders.Receive)
			r.Post("/{id}/instalments", orders.PayInstalment)
			r.Post("/{id}/rate/{itemId}", orders.Rate)
			r.Post("/{id}/notify", orders.RetryNotification)
		})
	})

	return r
}
