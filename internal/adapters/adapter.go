// Package adapters normalizes the heterogeneous third-party publish and
// auth APIs behind one contract. Adapters are stateless transformers of
// credentials into API calls; they never touch persistence.
package adapters

import (
	"context"
	"fmt"

	"github.com/go-socialhub/socialhub/internal/platform"
)

// Credentials is a provider token set, either freshly exchanged or loaded
// from a stored platform account.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	// OpenID is the provider-side user identifier returned together with
	// the token on wechat and douyin, and required by their user-scoped
	// API calls.
	OpenID string `json:"open_id,omitempty"`
	Scope  string `json:"scope,omitempty"`
}

// RemoteUser is the provider-side identity used to key the local
// credential record.
type RemoteUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Post is the content payload handed to an adapter's publish call,
// already validated against the platform's limits.
type Post struct {
	Title  string
	Text   string
	Images []string
	// Settings is the validated per-platform settings variant
	// (*settings.WeiboSettings etc.), or nil for platform defaults.
	Settings any
}

// PublishResult is the outcome of one publish call. Provider-reported
// failures (quota, invalid content, expired token) are carried here with
// Success=false; the adapter returns a non-nil error only for internal
// programming errors or unrecoverable transport failures.
type PublishResult struct {
	Success        bool   `json:"success"`
	PlatformPostID string `json:"platform_post_id,omitempty"`
	PublishedURL   string `json:"published_url,omitempty"`
	Error          string `json:"error,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`

	// NeedsReauth marks failures that cannot succeed without user action
	// (expired or revoked credentials). Transient marks provider or
	// network conditions worth retrying later by an external queue.
	NeedsReauth bool `json:"needs_reauth,omitempty"`
	Transient   bool `json:"transient,omitempty"`
}

// Adapter is the uniform capability contract implemented once per
// platform. The orchestrator stays platform-agnostic; every provider
// quirk lives behind this interface.
type Adapter interface {
	// Platform identifies which platform the adapter serves.
	Platform() platform.Platform

	// AuthURL builds the provider's authorization endpoint URL embedding
	// client id, redirect URI, scope and the CSRF state token.
	AuthURL(state string) string

	// ExchangeCode performs the authorization-code-for-token exchange.
	// Provider rejections and transport errors wrap oauth.ErrExchangeFailed.
	ExchangeCode(ctx context.Context, code string) (*Credentials, error)

	// UserInfo fetches the remote account identity for the credential
	// record. Failures wrap oauth.ErrIdentityFetch.
	UserInfo(ctx context.Context, creds *Credentials) (*RemoteUser, error)

	// Publish performs the platform-specific publish call. Ordinary
	// provider-reported failures map into the result, not the error.
	Publish(ctx context.Context, creds *Credentials, post *Post) (*PublishResult, error)

	// Refresh exchanges a refresh token for a new token set. Platforms
	// without refresh return oauth.ErrRefreshNotSupported without any
	// network call.
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)
}

// Registry maps platforms to adapter instances, resolved once at startup.
type Registry struct {
	adapters map[platform.Platform]Adapter
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(list ...Adapter) *Registry {
	m := make(map[platform.Platform]Adapter, len(list))
	for _, a := range list {
		m[a.Platform()] = a
	}
	return &Registry{adapters: m}
}

// Get resolves the adapter for p.
func (r *Registry) Get(p platform.Platform) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %q", p)
	}
	return a, nil
}

// Platforms lists the registered platforms in registry order.
func (r *Registry) Platforms() []platform.Platform {
	out := make([]platform.Platform, 0, len(r.adapters))
	for _, p := range platform.All {
		if _, ok := r.adapters[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
