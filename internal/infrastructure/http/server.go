package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	config     *config.ServerConfig
	rateLimit  *config.RateLimitConfig
	handler    *handler.ProductHandler
	logger     *slog.Logger
	meterProv  metric.MeterProvider
	httpServer *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.ServerConfig,
	rateLimit *config.RateLimitConfig,
	handler *handler.ProductHandler,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		rateLimit: rateLimit,
		handler:   handler,
		logger:    logger,
		meterProv: meterProvider,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	meter := s.meterProv.Meter("product-catalog-api")

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.HTTPRouteContext())
	s.router.Use(middleware.ActiveRequestsMiddleware(meter))
	s.router.Use(middleware.DurationMillisecondsMiddleware(meter))

	if s.rateLimit != nil && s.rateLimit.Enabled {
		s.router.Use(middleware.NewRateLimiter(s.rateLimit.Rate, s.rateLimit.Burst).Middleware)
	}
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Route("/products", func(r chi.Router) {
		r.Post("/", s.handler.CreateProduct)
		r.Get("/", s.handler.QueryProducts)
		r.Get("/{id}", s.handler.GetProduct)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint - exposes OpenTelemetry metrics
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// Handler returns the router wrapped with otelhttp for automatic HTTP metrics and tracing
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.meterProv),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			routePattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					routePattern = pattern
				}
			}
			return []attribute.KeyValue{
				attribute.String("http.route", routePattern),
			}
		}),
	)
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
