// Package checkout предоставляет маршруты сервиса оформления.
package checkout

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/brandinfo"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/begin"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/cancel"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/create"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/get"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/selectasset"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/selectnetwork"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/selectplan"
	"github.com/kseleznyov/crypto-checkout/internal/http/handlers/checkout/setemail"
	"github.com/kseleznyov/crypto-checkout/internal/http/middlewarectx"
	services "github.com/kseleznyov/crypto-checkout/internal/services/checkout"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, checkoutService *services.CheckoutService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/brands/{brand}", brandinfo.New(logger, checkoutService).ServeHTTP)
		r.Post("/brands/{brand}/sessions", create.New(logger, checkoutService).ServeHTTP)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", get.New(logger, checkoutService).ServeHTTP)
			r.Post("/plan", selectplan.New(logger, checkoutService).ServeHTTP)
			r.Post("/asset", selectasset.New(logger, checkoutService).ServeHTTP)
			r.Post("/network", selectnetwork.New(logger, checkoutService).ServeHTTP)
			r.Post("/email", setemail.New(logger, checkoutService).ServeHTTP)
			r.Post("/cancel", cancel.New(logger, checkoutService).ServeHTTP)

			// Фиксация ограничена по частоте: перебором можно исчерпать
			// пул адресов.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger, rate.NewLimiter(5, 10)))
				r.Post("/checkout", begin.New(logger, checkoutService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
