package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// routePattern prefers the chi route pattern and falls back to the raw path
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func requestAttrs(r *http.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("http.route", routePattern(r)),
		attribute.String("server.address", r.Host),
	}
}

// ActiveRequestsMiddleware tracks in-flight HTTP requests.
// The route is resolved after the handler runs, so the counter is
// incremented lazily on the first write and decremented with the same attributes.
func ActiveRequestsMiddleware(meter metric.Meter) func(next http.Handler) http.Handler {
	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &routeAwareWriter{
				ResponseWriter: w,
				request:        r,
				activeRequests: activeRequests,
			}

			next.ServeHTTP(wrapper, r)

			wrapper.ensureDecrement()
		})
	}
}

// routeAwareWriter captures the route and tracks active requests
type routeAwareWriter struct {
	http.ResponseWriter
	request        *http.Request
	activeRequests metric.Int64UpDownCounter
	attrs          []attribute.KeyValue
	decrementDone  bool
}

func (w *routeAwareWriter) WriteHeader(statusCode int) {
	w.incrementIfNeeded()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *routeAwareWriter) Write(b []byte) (int, error) {
	w.incrementIfNeeded()
	return w.ResponseWriter.Write(b)
}

func (w *routeAwareWriter) incrementIfNeeded() {
	if w.attrs != nil {
		return
	}
	w.attrs = requestAttrs(w.request)
	w.activeRequests.Add(w.request.Context(), 1, metric.WithAttributes(w.attrs...))
}

func (w *routeAwareWriter) ensureDecrement() {
	if w.decrementDone {
		return
	}
	w.decrementDone = true
	w.incrementIfNeeded()
	w.activeRequests.Add(w.request.Context(), -1, metric.WithAttributes(w.attrs...))
}

// DurationMillisecondsMiddleware records HTTP request duration in milliseconds,
// alongside the seconds-based histogram otelhttp already records
func DurationMillisecondsMiddleware(meter metric.Meter) func(next http.Handler) http.Handler {
	durationHistogram, err := meter.Float64Histogram(
		"http.server.request.duration.ms",
		metric.WithDescription("HTTP server request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := append(requestAttrs(r), attribute.Int("http.response.status_code", ww.Status()))
			durationHistogram.Record(r.Context(), float64(time.Since(start).Milliseconds()),
				metric.WithAttributes(attrs...),
			)
		})
	}
}

// HTTPRouteContext adds the HTTP route pattern to the request context
// so every log line written while handling the request carries it
func HTTPRouteContext() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := telemetry.WithHTTPRoute(r.Context(), routePattern(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StructuredLogger logs one JSON line per request
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			spanCtx := trace.SpanFromContext(r.Context()).SpanContext()

			attrs := []any{
				slog.String("http.request.method", r.Method),
				slog.String("http.route", routePattern(r)),
				slog.String("url.path", r.URL.Path),
				slog.String("url.query", r.URL.RawQuery),
				slog.Int("http.response.status_code", ww.Status()),
				slog.Int("http.response.body.size", ww.BytesWritten()),
				slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
				slog.String("client.address", r.RemoteAddr),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			}

			if spanCtx.IsValid() {
				attrs = append(attrs,
					slog.String("trace_id", spanCtx.TraceID().String()),
					slog.String("span_id", spanCtx.SpanID().String()),
				)
			}

			logLevel := slog.LevelInfo
			if ww.Status() >= 500 {
				logLevel = slog.LevelError
			} else if ww.Status() >= 400 {
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "HTTP request completed", attrs...)
		})
	}
}
