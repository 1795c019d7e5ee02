package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// OAuth Connect Flow
	RecordOAuthStateIssued(platform string, success bool)
	RecordOAuthStateRedeemed(platform, result string)
	RecordOAuthCallback(platform string, success bool)

	// Token Operations
	RecordTokenRefresh(platform string, success bool)

	// Publishing
	RecordPublishAttempt(platform, result string, duration time.Duration)
	RecordExternalAPICall(platform string, duration time.Duration)

	// Gauge Setters (for periodic updates)
	SetConnectedAccountsCount(platform string, count int)
	SetPendingPublicationsCount(count int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}

// MetricsStore defines the DB operations needed by the periodic gauge
// updater.
type MetricsStore interface {
	CountConnectedAccountsByPlatform() (map[string]int64, error)
	CountPendingPublications() (int64, error)
}
