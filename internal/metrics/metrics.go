// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portal_server"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations in seconds by route",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms up to ~4s
	}, []string{"route"})

	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fuzzy_resolutions_total",
		Help:      "Fuzzy file resolutions by result (hit, miss, cached)",
	}, []string{"result"})
	resolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fuzzy_resolve_duration_seconds",
		Help:      "Time spent walking and scoring the serving root",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
	candidatesScanned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fuzzy_candidates_scanned",
		Help:      "Number of files scored per fuzzy resolution",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	usersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users inserted by get-or-create",
	})
	userConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_insert_conflicts_total",
		Help:      "Inserts that lost a duplicate-email race and were re-read",
	})
	usersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "users",
		Help:      "Current number of stored users",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration,
			resolutions, resolveDuration, candidatesScanned,
			usersCreated, userConflicts, usersGauge)
	})
}

// HTTP helpers
func IncHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
func ObserveHTTPDuration(route string, d time.Duration) {
	httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Resolver helpers
func IncResolution(result string)            { resolutions.WithLabelValues(result).Inc() }
func ObserveResolveDuration(d time.Duration) { resolveDuration.Observe(d.Seconds()) }
func ObserveCandidatesScanned(n int)         { candidatesScanned.Observe(float64(n)) }

// User registry helpers
func IncUsersCreated()  { usersCreated.Inc() }
func IncUserConflicts() { userConflicts.Inc() }
func SetUsers(n int)    { usersGauge.Set(float64(n)) }
