package metrics

import (
	"strconv"
	"time"

	"github.com/go-socialhub/socialhub/internal/core"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(r core.Recorder) gin.HandlerFunc {
	// Only the Prometheus-backed recorder carries HTTP series
	m, ok := r.(*Metrics)
	if !ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/users/:id") or "unknown" if no match
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func boolResult(success bool) string {
	if success {
		return resultSuccess
	}
	return resultError
}

// RecordOAuthStateIssued records one state token issuance
func (m *Metrics) RecordOAuthStateIssued(platform string, success bool) {
	m.OAuthStatesIssuedTotal.WithLabelValues(platform, boolResult(success)).Inc()
}

// RecordOAuthStateRedeemed records one state redemption attempt
func (m *Metrics) RecordOAuthStateRedeemed(platform, result string) {
	// result: success, invalid, expired
	m.OAuthStatesRedeemedTotal.WithLabelValues(platform, result).Inc()
}

// RecordOAuthCallback records one provider callback
func (m *Metrics) RecordOAuthCallback(platform string, success bool) {
	m.OAuthCallbacksTotal.WithLabelValues(platform, boolResult(success)).Inc()
}

// RecordTokenRefresh records one token refresh attempt
func (m *Metrics) RecordTokenRefresh(platform string, success bool) {
	m.TokenRefreshTotal.WithLabelValues(platform, boolResult(success)).Inc()
}

// RecordPublishAttempt records one publish attempt
func (m *Metrics) RecordPublishAttempt(platform, result string, duration time.Duration) {
	// result: success, failed, rejected
	m.PublishAttemptsTotal.WithLabelValues(platform, result).Inc()
	m.PublishDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// RecordExternalAPICall records external platform API call duration
func (m *Metrics) RecordExternalAPICall(platform string, duration time.Duration) {
	m.ProviderAPIDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// SetConnectedAccountsCount sets the current count of connected accounts
// (for periodic updates)
func (m *Metrics) SetConnectedAccountsCount(platform string, count int) {
	m.ConnectedAccountsActive.WithLabelValues(platform).Set(float64(count))
}

// SetPendingPublicationsCount sets the current count of pending publications
// (for periodic updates)
func (m *Metrics) SetPendingPublicationsCount(count int) {
	m.PublicationsPending.Set(float64(count))
}

// RecordDatabaseQueryError records a database query error
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
