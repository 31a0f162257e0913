package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/keyurdhanani/store-management-project/internal/http/catalog"
	"github.com/keyurdhanani/store-management-project/internal/http/importcsv"
	"github.com/keyurdhanani/store-management-project/internal/http/matching"
	"github.com/keyurdhanani/store-management-project/internal/http/purchase"
	"github.com/keyurdhanani/store-management-project/internal/http/report"
	"github.com/keyurdhanani/store-management-project/internal/http/sale"
	"github.com/keyurdhanani/store-management-project/internal/http/stock"
	"github.com/keyurdhanani/store-management-project/internal/observability"
)

type Options struct {
	Timeout        time.Duration
	RateLimit      int // requests per minute per IP, 0 disables
	AllowedOrigins []string
	Production     bool
}

type Handlers struct {
	Catalog   *catalog.Handler
	Stock     *stock.Handler
	Purchases *purchase.Handler
	Sales     *sale.Handler
	Reports   *report.Handler
	Import    *importcsv.Handler
	Matching  *matching.Handler
}

func New(opts Options, h Handlers, metrics *observability.Metrics) http.Handler {
	router := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !opts.Production,
	})

	router.Use(middleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := secureMiddleware.Process(w, r); err != nil {
				slog.Warn("secure headers blocked request", "error", err)
				return
			}

			next.ServeHTTP(w, r)
		})
	})
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	if metrics != nil {
		router.Use(metrics.Middleware)
		router.Handle("/metrics", metrics.Handler())
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		if opts.RateLimit > 0 {
			r.Use(httprate.Limit(opts.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Catalog.ProductRoutes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Catalog.CategoryRoutes(r)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Catalog.SupplierRoutes(r)
		})

		r.Route("/stock", h.Stock.Routes)
		r.Route("/ledger", h.Stock.LedgerRoutes)

		r.Route("/purchases", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Purchases.Routes(r)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Sales.Routes(r)
		})

		r.Route("/reports", h.Reports.Routes)
		r.Route("/import", h.Import.Routes)
		r.Route("/matching", h.Matching.Routes)
	})

	return router
}
