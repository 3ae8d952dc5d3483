package middleware

import (
	"net/http"
	"strconv"

	"github.com/clubhq/clubhq/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics counts requests by route pattern, method and status.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}

		metrics.HTTPRequestCounter.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(wrapped.status),
		).Inc()
	})
}
