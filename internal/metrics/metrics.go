package metrics

import (
	"sync"

	"github.com/go-socialhub/socialhub/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ core.Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// OAuth Connect Flow Metrics
	OAuthStatesIssuedTotal   *prometheus.CounterVec
	OAuthStatesRedeemedTotal *prometheus.CounterVec
	OAuthCallbacksTotal      *prometheus.CounterVec

	// Token Metrics
	TokenRefreshTotal *prometheus.CounterVec

	// Publishing Metrics
	PublishAttemptsTotal    *prometheus.CounterVec
	PublishDuration         *prometheus.HistogramVec
	ProviderAPIDuration     *prometheus.HistogramVec
	ConnectedAccountsActive *prometheus.GaugeVec
	PublicationsPending     prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		OAuthStatesIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_states_issued_total",
				Help: "Total number of OAuth state tokens issued",
			},
			[]string{"platform", "result"}, // success, error
		),
		OAuthStatesRedeemedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_states_redeemed_total",
				Help: "Total number of OAuth state redemption attempts",
			},
			[]string{"platform", "result"}, // success, invalid, expired
		),
		OAuthCallbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_callbacks_total",
				Help: "Total number of OAuth provider callbacks",
			},
			[]string{"platform", "result"},
		),
		TokenRefreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platform_token_refresh_total",
				Help: "Total number of platform token refresh attempts",
			},
			[]string{"platform", "result"},
		),
		PublishAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "publish_attempts_total",
				Help: "Total number of publish attempts by outcome",
			},
			[]string{"platform", "result"}, // success, failed, rejected
		),
		PublishDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "publish_duration_seconds",
				Help:    "Time taken for one publish attempt end to end",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		ProviderAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_api_duration_seconds",
				Help:    "Duration of external platform API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		ConnectedAccountsActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "connected_accounts_active",
				Help: "Current number of connected platform accounts",
			},
			[]string{"platform"},
		),
		PublicationsPending: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "publications_pending",
				Help: "Current number of publications awaiting an outcome",
			},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"},
		),
	}
}
