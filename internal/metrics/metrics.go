package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginAttempts counts logins by scheme (session, token) and outcome (success, failure).
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_login_attempts_total",
			Help: "Login attempts by scheme and outcome",
		},
		[]string{"scheme", "outcome"},
	)

	// ContentCreated counts stored posts and comments.
	ContentCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_content_created_total",
			Help: "Posts and comments created",
		},
		[]string{"kind"},
	)

	// SessionsPurged counts expired sessions removed by the scheduler.
	SessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_sessions_purged_total",
			Help: "Expired sessions deleted",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginAttempts, ContentCreated, SessionsPurged)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// Only used for requests no route matched.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLogin counts a login attempt.
func RecordLogin(scheme string, ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	LoginAttempts.WithLabelValues(scheme, outcome).Inc()
}

// RecordCreated counts a stored post or comment.
func RecordCreated(kind string) {
	ContentCreated.WithLabelValues(kind).Inc()
}

// AddSessionsPurged adds n to the purged-sessions counter.
func AddSessionsPurged(n int64) {
	if n > 0 {
		SessionsPurged.Add(float64(n))
	}
}
