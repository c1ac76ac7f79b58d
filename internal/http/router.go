package httpserver

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/jw6ventures/dyncal/internal/availability"
	"github.com/jw6ventures/dyncal/internal/config"
	"github.com/jw6ventures/dyncal/internal/http/csrf"
	"github.com/jw6ventures/dyncal/internal/http/errors"
	"github.com/jw6ventures/dyncal/internal/http/ratelimit"
	"github.com/jw6ventures/dyncal/internal/metrics"
	"github.com/jw6ventures/dyncal/internal/store"
	"github.com/jw6ventures/dyncal/internal/ui"
)

// NewRouter wires all HTTP routes. st may be nil when no database is
// configured; the readiness probe then only reports the process as up and the
// availability management API is not mounted. ctx bounds background work such
// as rate limiter sweeps.
func NewRouter(ctx context.Context, cfg *config.Config, st *store.Store, sources availability.Source) http.Handler {
	r := chi.NewRouter()

	burst := int(cfg.APIRateLimit * 2)
	if burst < 1 {
		burst = 1
	}
	apiRateLimiter := ratelimit.NewIPRateLimiter(ctx, rate.Limit(cfg.APIRateLimit), burst, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if st != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := st.HealthCheck(ctx); err != nil {
				errors.LogError(r, "readiness check failed", err)
				http.Error(w, "unready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Handle("/static/*", ui.StaticHandler("/static/"))

	var sets store.AvailabilityRepository
	if st != nil {
		sets = st.Availability
	}
	uiHandler := ui.NewHandler(cfg, sources, sets)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(csrf.Middleware(cfg.BaseURL))
		r.Get("/calendar", uiHandler.Calendar)
		r.Post("/calendar/select", uiHandler.SelectDay)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(middleware.NoCache)

		r.Get("/calendar", uiHandler.CalendarJSON)
		r.With(middleware.AllowContentType("application/json")).Post("/calendar/select", uiHandler.SelectDayJSON)

		if sets != nil && cfg.AdminToken != "" {
			r.Route("/availability", func(r chi.Router) {
				r.Use(requireBearer(cfg.AdminToken))
				r.Get("/", uiHandler.ListAvailabilitySets)
				r.With(middleware.AllowContentType("application/json")).Put("/{name}", uiHandler.PutAvailabilitySet)
				r.Delete("/{name}", uiHandler.DeleteAvailabilitySet)
			})
		}
	})

	return r
}

// requireBearer rejects requests whose Authorization header does not carry
// token.
func requireBearer(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="dyncal"`)
				errors.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
