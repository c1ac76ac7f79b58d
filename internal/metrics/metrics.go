package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dyncal"

type routeKey struct{}

// HTTP traffic, labelled by chi route pattern so path parameters such as set
// names do not create new series.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route"})

	serverErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "HTTP requests answered with a 5xx status.",
	}, []string{"method", "route", "status"})

	requestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Availability store.
var dbSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "db",
	Name:      "latency_seconds",
	Help:      "Availability store operation latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation", "route"})

// Widget behaviour.
var (
	selectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "selections_total",
		Help:      "Day clicks handled, by mode and whether the selection changed.",
	}, []string{"mode", "outcome"})

	zoneFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timezone_fallbacks_total",
		Help:      "Renders that used the unadjusted clock because the timezone could not be loaded.",
	})
)

// Middleware counts and times every request. The route label is the matched
// chi pattern, resolved once routing has finished.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), routeKey{}, r.URL.Path)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			route := routeFromContext(ctx)
			status := strconv.Itoa(ww.Status())
			requestsTotal.WithLabelValues(r.Method, route).Inc()
			requestSeconds.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			if ww.Status() >= http.StatusInternalServerError {
				serverErrorsTotal.WithLabelValues(r.Method, route, status).Inc()
			}
		})
	}
}

// Handler serves the Prometheus exposition.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDBLatency records how long a store operation took since start,
// labelled with the route of the request in ctx.
func ObserveDBLatency(ctx context.Context, operation string, start time.Time) {
	dbSeconds.WithLabelValues(operation, routeFromContext(ctx)).Observe(time.Since(start).Seconds())
}

// ObserveSelection counts a day click. changed is false for clicks on
// disabled days.
func ObserveSelection(mode string, changed bool) {
	outcome := "ignored"
	if changed {
		outcome = "changed"
	}
	selectionsTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveTimezoneFallback counts a render whose timezone failed to load.
func ObserveTimezoneFallback() {
	zoneFallbacksTotal.Inc()
}

// routeFromContext prefers the chi pattern, then the raw path stored by
// Middleware.
func routeFromContext(ctx context.Context) string {
	if rctx := chi.RouteContext(ctx); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	if path, ok := ctx.Value(routeKey{}).(string); ok && path != "" {
		return path
	}
	return "unknown"
}
