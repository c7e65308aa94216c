package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values shared by the session counters
const (
	StatusSuccess      = "success"
	StatusFailure      = "failure"
	StatusSuperseded   = "superseded"
	StatusMissingToken = "missing_token"
	StatusSkipped      = "skipped"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Session metrics
	LoginsTotal          *prometheus.CounterVec
	LogoutsTotal         prometheus.Counter
	RefreshesTotal       *prometheus.CounterVec
	RestoresTotal        *prometheus.CounterVec
	SessionAuthenticated prometheus.Gauge
	TokenClockArmedTotal prometheus.Counter
	TokenClockFiredTotal prometheus.Counter

	// Guard metrics
	GuardDecisionsTotal *prometheus.CounterVec

	// Console HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Catalog cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Token store metrics
	TokenStoreOperationsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"},
		),
		LogoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_logouts_total",
				Help: "Total number of logouts",
			},
		),
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_token_refreshes_total",
				Help: "Total number of access token refresh attempts",
			},
			[]string{"status"},
		),
		RestoresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_session_restores_total",
				Help: "Total number of session restore attempts at startup",
			},
			[]string{"status"},
		),
		SessionAuthenticated: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "warden_session_authenticated",
				Help: "1 when a session is established, 0 otherwise",
			},
		),
		TokenClockArmedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_token_clock_armed_total",
				Help: "Total number of refresh timers scheduled",
			},
		),
		TokenClockFiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_token_clock_fired_total",
				Help: "Total number of refresh timers that fired",
			},
		),
		GuardDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_guard_decisions_total",
				Help: "Total number of navigation guard decisions",
			},
			[]string{"guard", "outcome"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_http_requests_total",
				Help: "Total number of console HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warden_http_request_duration_seconds",
				Help:    "Console HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_catalog_cache_hits_total",
				Help: "Total number of catalog cache hits",
			},
			[]string{"catalog"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_catalog_cache_misses_total",
				Help: "Total number of catalog cache misses",
			},
			[]string{"catalog"},
		),
		TokenStoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_token_store_operations_total",
				Help: "Total number of token store operations",
			},
			[]string{"backend", "operation", "status"},
		),
	}

	registry.MustRegister(
		m.LoginsTotal,
		m.LogoutsTotal,
		m.RefreshesTotal,
		m.RestoresTotal,
		m.SessionAuthenticated,
		m.TokenClockArmedTotal,
		m.TokenClockFiredTotal,
		m.GuardDecisionsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.TokenStoreOperationsTotal,
	)

	return m
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin(status string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(status).Inc()
}

// RecordLogout counts a logout
func (m *Metrics) RecordLogout() {
	if m == nil {
		return
	}
	m.LogoutsTotal.Inc()
}

// RecordRefresh counts a refresh attempt
func (m *Metrics) RecordRefresh(status string) {
	if m == nil {
		return
	}
	m.RefreshesTotal.WithLabelValues(status).Inc()
}

// RecordRestore counts a restore attempt
func (m *Metrics) RecordRestore(status string) {
	if m == nil {
		return
	}
	m.RestoresTotal.WithLabelValues(status).Inc()
}

// SetAuthenticated mirrors the session flag into the gauge
func (m *Metrics) SetAuthenticated(authenticated bool) {
	if m == nil {
		return
	}
	if authenticated {
		m.SessionAuthenticated.Set(1)
	} else {
		m.SessionAuthenticated.Set(0)
	}
}

// RecordClockArmed counts a scheduled refresh timer
func (m *Metrics) RecordClockArmed() {
	if m == nil {
		return
	}
	m.TokenClockArmedTotal.Inc()
}

// RecordClockFired counts a fired refresh timer
func (m *Metrics) RecordClockFired() {
	if m == nil {
		return
	}
	m.TokenClockFiredTotal.Inc()
}

// RecordGuardDecision counts a guard outcome
func (m *Metrics) RecordGuardDecision(guard, outcome string) {
	if m == nil {
		return
	}
	m.GuardDecisionsTotal.WithLabelValues(guard, outcome).Inc()
}

// RecordHTTPRequest records a console request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCacheHit counts a catalog cache hit
func (m *Metrics) RecordCacheHit(catalog string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(catalog).Inc()
}

// RecordCacheMiss counts a catalog cache miss
func (m *Metrics) RecordCacheMiss(catalog string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(catalog).Inc()
}

// RecordTokenStoreOperation counts a token store call
func (m *Metrics) RecordTokenStoreOperation(backend, operation string, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.TokenStoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
}
