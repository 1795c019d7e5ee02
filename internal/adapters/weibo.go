package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/platform/settings"

	"golang.org/x/oauth2"
)

const weiboDefaultAPIBase = "https://api.weibo.com"

// Weibo error codes that require re-authentication.
var weiboReauthCodes = map[int]bool{
	21315: true, // token expired
	21327: true, // expired token
	21332: true, // invalid access token
}

// Weibo error codes worth retrying later.
var weiboTransientCodes = map[int]bool{
	10001: true, // system busy
	10010: true, // job timeout
	20016: true, // publish frequency too fast
}

// WeiboConfig configures the weibo adapter.
type WeiboConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// APIBase defaults to the production weibo host.
	APIBase string
}

// WeiboAdapter integrates weibo. Weibo follows the standard OAuth2
// authorization-code grant, so the exchange goes through x/oauth2; its
// tokens carry no refresh token by default.
type WeiboAdapter struct {
	cfg         WeiboConfig
	oauthConfig *oauth2.Config
	httpClient  *http.Client
}

// NewWeiboAdapter creates a weibo adapter.
func NewWeiboAdapter(cfg WeiboConfig, httpClient *http.Client) *WeiboAdapter {
	if cfg.APIBase == "" {
		cfg.APIBase = weiboDefaultAPIBase
	}
	endpoints := platform.MustGetConfig(platform.Weibo).OAuth
	return &WeiboAdapter{
		cfg:        cfg,
		httpClient: httpClient,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{endpoints.Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.APIBase + "/oauth2/authorize",
				TokenURL: cfg.APIBase + "/oauth2/access_token",
			},
		},
	}
}

func (a *WeiboAdapter) Platform() platform.Platform {
	return platform.Weibo
}

// AuthURL builds the weibo authorization URL.
func (a *WeiboAdapter) AuthURL(state string) string {
	return a.oauthConfig.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens via the
// standard OAuth2 token endpoint.
func (a *WeiboAdapter) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchangeFailed, err)
	}

	creds := &Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		creds.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	// Weibo returns the account uid alongside the token.
	if uid, ok := token.Extra("uid").(string); ok {
		creds.OpenID = uid
	}
	return creds, nil
}

// Refresh is not supported: weibo issues no refresh token by default, so
// expired access requires the user to re-authorize. No network call is
// attempted.
func (a *WeiboAdapter) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	return nil, oauth.ErrRefreshNotSupported
}

type weiboErrorBody struct {
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
	Request   string `json:"request"`
}

type weiboUser struct {
	weiboErrorBody
	IDStr           string `json:"idstr"`
	ScreenName      string `json:"screen_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// UserInfo fetches the weibo account behind the token. The uid captured
// during the exchange selects the account.
func (a *WeiboAdapter) UserInfo(ctx context.Context, creds *Credentials) (*RemoteUser, error) {
	if creds.OpenID == "" {
		return nil, fmt.Errorf("%w: missing uid", oauth.ErrIdentityFetch)
	}

	var payload weiboUser
	u := fmt.Sprintf("%s/2/users/show.json?access_token=%s&uid=%s",
		a.cfg.APIBase, url.QueryEscape(creds.AccessToken), url.QueryEscape(creds.OpenID))
	if err := getJSON(ctx, a.httpClient, u, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrIdentityFetch, err)
	}
	if payload.ErrorCode != 0 || payload.IDStr == "" {
		return nil, fmt.Errorf("%w: error_code=%d error=%s",
			oauth.ErrIdentityFetch, payload.ErrorCode, payload.Error)
	}

	return &RemoteUser{
		ID:        payload.IDStr,
		Username:  payload.ScreenName,
		AvatarURL: payload.ProfileImageURL,
	}, nil
}

type weiboStatus struct {
	weiboErrorBody
	IDStr string `json:"idstr"`
	User  struct {
		IDStr string `json:"idstr"`
	} `json:"user"`
}

// Publish posts a status update. Provider rejections (frequency caps,
// invalid token) come back in the result, not as errors.
func (a *WeiboAdapter) Publish(
	ctx context.Context,
	creds *Credentials,
	post *Post,
) (*PublishResult, error) {
	form := url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("status", post.Text)
	if s, ok := post.Settings.(*settings.WeiboSettings); ok {
		if s.Visibility == "private" {
			form.Set("visible", "1")
		} else if s.Visibility == "friends" {
			form.Set("visible", "3")
		}
	}

	var payload weiboStatus
	u := a.cfg.APIBase + "/2/statuses/share.json"
	if err := postForm(ctx, a.httpClient, u, form.Encode(), &payload); err != nil {
		// Weibo answers 4xx with a JSON error body; surface it as a
		// provider failure rather than a transport error.
		var herr *httpError
		if errors.As(err, &herr) {
			var inner weiboErrorBody
			if json.Unmarshal(herr.Body, &inner) == nil && inner.ErrorCode != 0 {
				return weiboFailure(inner), nil
			}
		}
		return nil, fmt.Errorf("weibo publish failed: %w", err)
	}
	if payload.ErrorCode != 0 {
		return weiboFailure(payload.weiboErrorBody), nil
	}
	if payload.IDStr == "" {
		return nil, fmt.Errorf("weibo publish failed: empty status id in response")
	}

	return &PublishResult{
		Success:        true,
		PlatformPostID: payload.IDStr,
		PublishedURL:   fmt.Sprintf("https://weibo.com/%s/%s", payload.User.IDStr, payload.IDStr),
	}, nil
}

func weiboFailure(e weiboErrorBody) *PublishResult {
	return &PublishResult{
		Success:     false,
		Error:       e.Error,
		ErrorCode:   strconv.Itoa(e.ErrorCode),
		NeedsReauth: weiboReauthCodes[e.ErrorCode],
		Transient:   weiboTransientCodes[e.ErrorCode],
	}
}
