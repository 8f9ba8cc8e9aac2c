package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanisarees/storefront/internal/session"
	"github.com/vanisarees/storefront/pkg/health"
	"github.com/vanisarees/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
// apiMiddleware runs on /api/v1 after the session is resolved.
func NewRouter(
	sessions *session.Manager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsOrigins []string,
	apiMiddleware ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsOrigins, 0))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Tracing)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	collections := NewCollectionHandler(sessions, logger)
	catalogHandler := NewCatalogHandler(sessions, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Session)
		r.Use(middleware.RequestLogger(logger))
		r.Use(apiMiddleware...)
		r.Use(LeaseSession(sessions, logger))

		for _, name := range []string{"cart", "wishlist"} {
			r.Route("/"+name, func(r chi.Router) {
				r.Get("/", collections.Get(name))
				r.Delete("/", collections.Clear(name))
				r.Post("/items", collections.AddItem(name))
				r.Delete("/items/{id}", collections.RemoveItem(name))
				r.Post("/toggle", collections.Toggle(name))
			})
		}

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.Open)
			r.Post("/page/{page}", catalogHandler.GoToPage)
			r.Post("/products/{id}/cart", catalogHandler.AddToCart)
			r.Post("/products/{id}/wishlist", catalogHandler.ToggleWishlist)
			r.Post("/products/{id}/open", catalogHandler.OpenProduct)
			r.Get("/preview", catalogHandler.Preview)
			r.Put("/preview/{id}", catalogHandler.PointerEnter)
			r.Delete("/preview", catalogHandler.PointerLeave)
		})
	})

	return r
}
