package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitDisabledReturnsNoop(t *testing.T) {
	rec := Init(false)
	_, ok := rec.(*NoopMetrics)
	assert.True(t, ok)
}

func TestInitEnabledReturnsSameInstance(t *testing.T) {
	first := Init(true)
	second := Init(true)
	assert.Same(t, first, second, "Prometheus metrics must register once")
}

func TestNoopMethodsDoNotPanic(t *testing.T) {
	rec := NewNoopMetrics()
	rec.RecordOAuthStateIssued("wechat", true)
	rec.RecordOAuthStateRedeemed("weibo", "expired")
	rec.RecordOAuthCallback("douyin", false)
	rec.RecordTokenRefresh("wechat", true)
	rec.RecordPublishAttempt("weibo", "success", time.Second)
	rec.RecordExternalAPICall("xiaohongshu", time.Millisecond)
	rec.SetConnectedAccountsCount("wechat", 3)
	rec.SetPendingPublicationsCount(1)
	rec.RecordDatabaseQueryError("list_accounts")
}

func TestPrometheusRecorders(t *testing.T) {
	m := Init(true).(*Metrics)
	m.RecordOAuthStateIssued("wechat", true)
	m.RecordOAuthStateRedeemed("wechat", "success")
	m.RecordOAuthCallback("wechat", true)
	m.RecordTokenRefresh("douyin", false)
	m.RecordPublishAttempt("weibo", "rejected", 200*time.Millisecond)
	m.RecordExternalAPICall("weibo", 50*time.Millisecond)
	m.SetConnectedAccountsCount("weibo", 2)
	m.SetPendingPublicationsCount(4)
	m.RecordDatabaseQueryError("upsert_account")
}
