package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/go-socialhub/socialhub/internal/cache"
	"github.com/go-socialhub/socialhub/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *StateStore {
	return NewStateStore(cache.NewMemoryCache[StateRecord]())
}

func TestStateStore_SingleUse(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	token, err := store.Issue(ctx, "user-1", platform.Weibo, "/settings")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	record, err := store.Redeem(ctx, token, platform.Weibo)
	require.NoError(t, err)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, platform.Weibo, record.Platform)
	assert.Equal(t, "/settings", record.RedirectURI)

	// Second redemption of the same token must fail.
	_, err = store.Redeem(ctx, token, platform.Weibo)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_PlatformScoped(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	token, err := store.Issue(ctx, "user-1", platform.Weibo, "")
	require.NoError(t, err)

	// A weibo state never validates for wechat.
	_, err = store.Redeem(ctx, token, platform.Wechat)
	assert.ErrorIs(t, err, ErrInvalidState)

	// And the failed cross-platform attempt must not consume it.
	record, err := store.Redeem(ctx, token, platform.Weibo)
	require.NoError(t, err)
	assert.Equal(t, "user-1", record.UserID)
}

func TestStateStore_Expiry(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	issuedAt := time.Now()
	store.now = func() time.Time { return issuedAt }

	token, err := store.Issue(ctx, "user-1", platform.Douyin, "")
	require.NoError(t, err)

	// 599s after issuance: still valid.
	store.now = func() time.Time { return issuedAt.Add(599 * time.Second) }
	record, err := store.Redeem(ctx, token, platform.Douyin)
	require.NoError(t, err)
	assert.Equal(t, "user-1", record.UserID)

	// Re-issue and jump past the window: invalid even though the memory
	// backend has not evicted the key (cache TTL is wall-clock based).
	token, err = store.Issue(ctx, "user-1", platform.Douyin, "")
	require.NoError(t, err)

	store.now = func() time.Time { return issuedAt.Add(601 * time.Second) }
	_, err = store.Redeem(ctx, token, platform.Douyin)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_EmptyAndUnknownToken(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	_, err := store.Redeem(ctx, "", platform.Weibo)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = store.Redeem(ctx, "never-issued", platform.Weibo)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_IssueUnknownPlatform(t *testing.T) {
	store := newTestStore()

	_, err := store.Issue(context.Background(), "user-1", platform.Platform("orkut"), "")
	require.Error(t, err)
}

func TestStateStore_TokenEntropy(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	a, err := store.Issue(ctx, "user-1", platform.Weibo, "")
	require.NoError(t, err)
	b, err := store.Issue(ctx, "user-1", platform.Weibo, "")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	// 32 bytes of entropy, base64url encoded without padding.
	assert.Len(t, a, 43)
}
