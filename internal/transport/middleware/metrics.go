package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dreamjournal_status_http_request_duration_seconds",
	Help:    "Status server request latency",
	Buckets: prometheus.DefBuckets,
}, []string{"path", "status"})

// Metrics records request latency by route pattern and status code. It must
// wrap the ServeMux directly to see the matched pattern.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			requestDuration.WithLabelValues(path, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
		})
	}
}
