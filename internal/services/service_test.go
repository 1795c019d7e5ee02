package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-socialhub/socialhub/internal/adapters"
	"github.com/go-socialhub/socialhub/internal/cache"
	"github.com/go-socialhub/socialhub/internal/metrics"
	"github.com/go-socialhub/socialhub/internal/models"
	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/store"

	"github.com/stretchr/testify/require"
)

// fakeAdapter is a scripted Adapter that counts outbound-call attempts,
// so gate tests can assert no provider traffic happened.
type fakeAdapter struct {
	p platform.Platform

	exchangeCreds *adapters.Credentials
	exchangeErr   error
	user          *adapters.RemoteUser
	userErr       error
	publishResult *adapters.PublishResult
	publishErr    error
	refreshCreds  *adapters.Credentials
	refreshErr    error

	exchangeCalls int
	publishCalls  int
	refreshCalls  int
}

func (f *fakeAdapter) Platform() platform.Platform { return f.p }

func (f *fakeAdapter) AuthURL(state string) string {
	return "https://provider.example.com/authorize?state=" + state
}

func (f *fakeAdapter) ExchangeCode(ctx context.Context, code string) (*adapters.Credentials, error) {
	f.exchangeCalls++
	return f.exchangeCreds, f.exchangeErr
}

func (f *fakeAdapter) UserInfo(ctx context.Context, creds *adapters.Credentials) (*adapters.RemoteUser, error) {
	return f.user, f.userErr
}

func (f *fakeAdapter) Publish(ctx context.Context, creds *adapters.Credentials, post *adapters.Post) (*adapters.PublishResult, error) {
	f.publishCalls++
	return f.publishResult, f.publishErr
}

func (f *fakeAdapter) Refresh(ctx context.Context, refreshToken string) (*adapters.Credentials, error) {
	f.refreshCalls++
	return f.refreshCreds, f.refreshErr
}

type testEnv struct {
	store    *store.Store
	states   *oauth.StateStore
	accounts *AccountService
	publish  *PublishService
	configs  *ConfigService
	adapter  *fakeAdapter
}

func setupServices(t *testing.T, fake *fakeAdapter) *testEnv {
	t.Helper()
	s, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)

	states := oauth.NewStateStore(cache.NewMemoryCache[oauth.StateRecord]())
	registry := adapters.NewRegistry(fake)
	recorder := metrics.NewNoopMetrics()

	accounts := NewAccountService(s, states, registry, recorder, 5*time.Minute)
	return &testEnv{
		store:    s,
		states:   states,
		accounts: accounts,
		publish:  NewPublishService(s, accounts, registry, recorder),
		configs:  NewConfigService(s),
		adapter:  fake,
	}
}

// seedAccount persists a connected account wired to the fake adapter's
// platform and returns it.
func seedAccount(t *testing.T, env *testEnv, userID string) *models.PlatformAccount {
	t.Helper()
	expiry := time.Now().Add(2 * time.Hour)
	acct, err := env.store.UpsertAccount(&models.PlatformAccount{
		UserID:           userID,
		Platform:         env.adapter.p,
		PlatformUserID:   "remote-1",
		PlatformUsername: "remote_user",
		AccessToken:      "access-1",
		RefreshToken:     "refresh-1",
		TokenExpiry:      &expiry,
	})
	require.NoError(t, err)
	return acct
}

// seedContent persists a content item owned by userID.
func seedContent(t *testing.T, env *testEnv, userID, text string, images []string) *models.ContentItem {
	t.Helper()
	item := &models.ContentItem{
		UserID: userID,
		Title:  "title",
		Text:   text,
		Images: images,
	}
	require.NoError(t, env.store.CreateContentItem(item))
	return item
}
