package metrics

import (
	"time"

	"github.com/go-socialhub/socialhub/internal/core"
)

// NoopMetrics is a no-operation implementation of core.Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements core.Recorder interface at compile time
var _ core.Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

// OAuth Connect Flow - noop implementations
func (n *NoopMetrics) RecordOAuthStateIssued(platform string, success bool) {}
func (n *NoopMetrics) RecordOAuthStateRedeemed(platform, result string)     {}
func (n *NoopMetrics) RecordOAuthCallback(platform string, success bool)    {}

// Token Operations - noop implementations
func (n *NoopMetrics) RecordTokenRefresh(platform string, success bool) {}

// Publishing - noop implementations
func (n *NoopMetrics) RecordPublishAttempt(platform, result string, duration time.Duration) {}
func (n *NoopMetrics) RecordExternalAPICall(platform string, duration time.Duration)        {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetConnectedAccountsCount(platform string, count int) {}
func (n *NoopMetrics) SetPendingPublicationsCount(count int)                {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
