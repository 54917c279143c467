package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dfodeker/corekit/internal/metrics"
	"github.com/go-chi/chi/v5"
)

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		status := strconv.Itoa(rec.code())

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		metrics.HTTPDurationSeconds.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		metrics.HTTPResponseSizeBytes.WithLabelValues(r.Method, route, status).Observe(float64(rec.bytes))
	})
}

// routePattern prefers chi's pattern (e.g. "/v1/ids/{id}") to keep label
// cardinality bounded. Unmatched requests collapse into one label.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
