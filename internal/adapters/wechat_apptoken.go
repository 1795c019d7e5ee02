package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-socialhub/socialhub/internal/core"
	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/retry"

	"github.com/google/go-querystring/query"
	"golang.org/x/sync/singleflight"
)

// appTokenRefreshSkew refreshes the wechat server token this long before
// its provider-reported expiry, so in-flight publishes never race the
// hard deadline.
const appTokenRefreshSkew = 5 * time.Minute

// AppToken is the cached server-level wechat credential. It is an
// app-wide backend token, shared across all of the app's users, and must
// never be exposed as a per-user credential.
type AppToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AppTokenSource caches and refreshes wechat's server-level API access
// token, keyed by app id. A single-writer refresh path (singleflight)
// guards against duplicate concurrent refresh requests; the cache keeps
// the token visible across instances.
type AppTokenSource struct {
	appID     string
	appSecret string
	apiBase   string

	cache core.Cache[AppToken]
	retry *retry.Client
	group singleflight.Group
	now   func() time.Time
}

// NewAppTokenSource creates a token source for one wechat app identity.
func NewAppTokenSource(
	appID, appSecret, apiBase string,
	c core.Cache[AppToken],
	httpClient *http.Client,
) *AppTokenSource {
	if apiBase == "" {
		apiBase = wechatDefaultAPIBase
	}
	return &AppTokenSource{
		appID:     appID,
		appSecret: appSecret,
		apiBase:   apiBase,
		cache:     c,
		retry: retry.NewClient(
			retry.WithHTTPClient(httpClient),
			retry.WithMaxRetries(2),
			retry.WithInitialRetryDelay(500*time.Millisecond),
		),
		now: time.Now,
	}
}

func (s *AppTokenSource) cacheKey() string {
	return "wechat_app_token:" + s.appID
}

// Token returns a currently valid server-level token, fetching a fresh
// one when the cached token is absent or within the refresh skew.
// Concurrent callers share one refresh request per app id.
func (s *AppTokenSource) Token(ctx context.Context) (string, error) {
	if tok, err := s.cache.Get(ctx, s.cacheKey()); err == nil {
		if !oauth.IsExpired(s.now(), tok.ExpiresAt, appTokenRefreshSkew) {
			return tok.Token, nil
		}
	}

	v, err, _ := s.group.Do(s.appID, func() (any, error) {
		// Re-check under the flight: another caller may have refreshed
		// while this one waited.
		if tok, err := s.cache.Get(ctx, s.cacheKey()); err == nil {
			if !oauth.IsExpired(s.now(), tok.ExpiresAt, appTokenRefreshSkew) {
				return tok.Token, nil
			}
		}
		return s.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type wechatAppTokenParams struct {
	GrantType string `url:"grant_type"`
	AppID     string `url:"appid"`
	Secret    string `url:"secret"`
}

type wechatAppTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// fetch exchanges app credentials for a fresh server token and caches it.
// The call is idempotent, so transport-level retries are safe here.
func (s *AppTokenSource) fetch(ctx context.Context) (string, error) {
	params, err := query.Values(wechatAppTokenParams{
		GrantType: "client_credential",
		AppID:     s.appID,
		Secret:    s.appSecret,
	})
	if err != nil {
		return "", err
	}

	url := s.apiBase + "/cgi-bin/token?" + params.Encode()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create app token request: %w", err)
	}

	resp, err := s.retry.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("wechat app token fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read app token response: %w", err)
	}

	var payload wechatAppTokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode app token response: %w", err)
	}
	if payload.ErrCode != 0 || payload.AccessToken == "" {
		return "", fmt.Errorf(
			"wechat rejected app token request: errcode=%d errmsg=%s",
			payload.ErrCode, payload.ErrMsg,
		)
	}

	tok := AppToken{
		Token:     payload.AccessToken,
		ExpiresAt: oauth.ComputeExpiry(s.now(), payload.ExpiresIn),
	}

	// Cache for the provider lifetime; readers apply the skew themselves.
	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if err := s.cache.Set(ctx, s.cacheKey(), tok, ttl); err != nil {
		log.Printf("[WeChat] Best-effort app token cache write failed: %v", err)
	}

	return tok.Token, nil
}
