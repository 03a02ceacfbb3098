// Package http wires the storefront's HTTP surface: catalog, session cart,
// checkout, health, and metrics.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soletrade/storefront/pkg/health"
	"github.com/soletrade/storefront/pkg/httputil"
	"github.com/soletrade/storefront/pkg/middleware"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Health   *health.Handler
	Logger   *slog.Logger
	Service  string
}

// NewRouter builds the chi router with the full middleware chain and all
// API routes.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics(deps.Service))
	r.Use(middleware.Tracing(deps.Service))
	r.Use(middleware.RequestLogger(deps.Logger))

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.Products.List)
			r.Post("/", deps.Products.Create)
			r.Get("/{productId}", deps.Products.Get)
			r.Put("/{productId}/stock", deps.Products.SetStock)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(SessionRequired)
			r.Get("/", deps.Cart.Get)
			r.Delete("/", deps.Cart.Clear)
			r.Post("/items", deps.Cart.AddItem)
			r.Put("/items/{productId}", deps.Cart.UpdateQuantity)
			r.Delete("/items/{productId}", deps.Cart.RemoveItem)
		})

		r.With(SessionRequired).Post("/checkout", deps.Checkout.Checkout)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "route not found"},
		})
	})

	return r
}
