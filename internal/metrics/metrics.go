package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)

	// Database metrics
	dbQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// Business metrics
	bookingsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_submitted_total",
			Help: "Booking submissions by outcome",
		},
		[]string{"result"}, // accepted, rejected, failed
	)

	bookingNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_notifications_total",
			Help: "Operator notification dispatches by outcome",
		},
		[]string{"result"}, // sent, failed
	)

	bookingStoreFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_store_failures_total",
			Help: "Booking store operations that failed",
		},
		[]string{"operation"},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of admin login attempts",
		},
		[]string{"status"}, // success, failure
	)

	sessionGateDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_gate_denials_total",
			Help: "Requests turned away by the admin session gate",
		},
		[]string{"kind"}, // redirect, unauthorized
	)
)

// UnmatchedRoute is the endpoint label for paths no mounted route serves
const UnmatchedRoute = "unmatched"

// PrometheusMiddleware creates a middleware that records Prometheus metrics.
// The endpoint label is the mounted route pattern, never the raw path.
func PrometheusMiddleware(next http.Handler, routes ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip metrics endpoint itself
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)
		endpoint := routeLabel(r.URL.Path, routes)

		httpRequestsTotal.WithLabelValues(r.Method, endpoint, statusCode).Inc()
		httpRequestDuration.WithLabelValues(r.Method, endpoint, statusCode).Observe(duration)
		httpResponseSize.WithLabelValues(r.Method, endpoint).Observe(float64(wrapped.size))
	})
}

// routeLabel returns the route serving path. A "{*name}" segment matches the
// rest of the path.
func routeLabel(path string, routes []string) string {
	for _, route := range routes {
		if i := strings.Index(route, "{*"); i >= 0 {
			if strings.HasPrefix(path, route[:i]) {
				return route
			}
			continue
		}
		if path == route {
			return route
		}
	}
	return UnmatchedRoute
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// RecordAuthAttempt records an admin login attempt
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}

// RecordBookingSubmission records the outcome of a booking submission
func RecordBookingSubmission(result string) {
	bookingsSubmittedTotal.WithLabelValues(result).Inc()
}

// RecordNotification records an operator notification dispatch
func RecordNotification(err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	bookingNotificationsTotal.WithLabelValues(result).Inc()
}

// RecordStoreFailure records a failed booking store operation
func RecordStoreFailure(operation string) {
	bookingStoreFailuresTotal.WithLabelValues(operation).Inc()
}

// RecordGateDenial records a request refused by the session gate
func RecordGateDenial(kind string) {
	sessionGateDenialsTotal.WithLabelValues(kind).Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	dbQueriesTotal.WithLabelValues(operation, status).Inc()
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
