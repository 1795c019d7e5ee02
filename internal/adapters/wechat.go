package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/platform/settings"

	"github.com/google/go-querystring/query"
)

// Default wechat API hosts; overridable for tests.
const (
	wechatDefaultAPIBase  = "https://api.weixin.qq.com"
	wechatDefaultOpenBase = "https://open.weixin.qq.com"
)

// Wechat errcodes that mean the credential is no longer usable.
var wechatReauthCodes = map[int]bool{
	40001: true, // invalid credential
	40014: true, // invalid access_token
	42001: true, // access_token expired
	42007: true, // token revoked, re-authorize
}

// Wechat errcodes worth retrying later.
var wechatTransientCodes = map[int]bool{
	-1:    true, // system busy
	45009: true, // api call quota reached
}

// WechatConfig configures the wechat official-account adapter.
type WechatConfig struct {
	AppID       string
	AppSecret   string
	RedirectURL string

	// APIBase and OpenBase default to the production wechat hosts.
	APIBase  string
	OpenBase string
}

// WechatAdapter integrates wechat official accounts. It juggles two token
// kinds that must not be confused: the per-user OAuth token from the
// authorization-code flow, and the app-wide server token used for
// publishing, cached in the AppTokenSource.
type WechatAdapter struct {
	cfg        WechatConfig
	httpClient *http.Client
	appTokens  *AppTokenSource
}

// NewWechatAdapter creates a wechat adapter.
func NewWechatAdapter(
	cfg WechatConfig,
	httpClient *http.Client,
	appTokens *AppTokenSource,
) *WechatAdapter {
	if cfg.APIBase == "" {
		cfg.APIBase = wechatDefaultAPIBase
	}
	if cfg.OpenBase == "" {
		cfg.OpenBase = wechatDefaultOpenBase
	}
	return &WechatAdapter{
		cfg:        cfg,
		httpClient: httpClient,
		appTokens:  appTokens,
	}
}

func (a *WechatAdapter) Platform() platform.Platform {
	return platform.Wechat
}

type wechatAuthParams struct {
	AppID        string `url:"appid"`
	RedirectURI  string `url:"redirect_uri"`
	ResponseType string `url:"response_type"`
	Scope        string `url:"scope"`
	State        string `url:"state"`
}

// AuthURL builds the wechat authorization URL. Wechat requires the
// literal "#wechat_redirect" fragment at the end.
func (a *WechatAdapter) AuthURL(state string) string {
	params, _ := query.Values(wechatAuthParams{
		AppID:        a.cfg.AppID,
		RedirectURI:  a.cfg.RedirectURL,
		ResponseType: "code",
		Scope:        platform.MustGetConfig(platform.Wechat).OAuth.Scope,
		State:        state,
	})
	return a.cfg.OpenBase + "/connect/oauth2/authorize?" + params.Encode() + "#wechat_redirect"
}

// wechatError is the errcode/errmsg envelope wechat mixes into every
// response body (0 means success).
type wechatError struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (e wechatError) failed() bool { return e.ErrCode != 0 }

type wechatTokenResponse struct {
	wechatError
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"openid"`
	Scope        string `json:"scope"`
}

type wechatCodeParams struct {
	AppID     string `url:"appid"`
	Secret    string `url:"secret"`
	Code      string `url:"code"`
	GrantType string `url:"grant_type"`
}

// ExchangeCode exchanges an authorization code for the per-user OAuth
// token set. Wechat uses appid/secret query parameters instead of the
// standard client_id form fields.
func (a *WechatAdapter) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	params, err := query.Values(wechatCodeParams{
		AppID:     a.cfg.AppID,
		Secret:    a.cfg.AppSecret,
		Code:      code,
		GrantType: "authorization_code",
	})
	if err != nil {
		return nil, err
	}

	var payload wechatTokenResponse
	url := a.cfg.APIBase + "/sns/oauth2/access_token?" + params.Encode()
	if err := getJSON(ctx, a.httpClient, url, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchangeFailed, err)
	}
	if payload.failed() || payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: errcode=%d errmsg=%s",
			oauth.ErrExchangeFailed, payload.ErrCode, payload.ErrMsg)
	}

	return &Credentials{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    payload.ExpiresIn,
		OpenID:       payload.OpenID,
		Scope:        payload.Scope,
	}, nil
}

type wechatRefreshParams struct {
	AppID        string `url:"appid"`
	GrantType    string `url:"grant_type"`
	RefreshToken string `url:"refresh_token"`
}

// Refresh renews the per-user OAuth token set.
func (a *WechatAdapter) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	params, err := query.Values(wechatRefreshParams{
		AppID:        a.cfg.AppID,
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var payload wechatTokenResponse
	url := a.cfg.APIBase + "/sns/oauth2/refresh_token?" + params.Encode()
	if err := getJSON(ctx, a.httpClient, url, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchangeFailed, err)
	}
	if payload.failed() || payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: errcode=%d errmsg=%s",
			oauth.ErrExchangeFailed, payload.ErrCode, payload.ErrMsg)
	}

	return &Credentials{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    payload.ExpiresIn,
		OpenID:       payload.OpenID,
		Scope:        payload.Scope,
	}, nil
}

type wechatUserResponse struct {
	wechatError
	OpenID     string `json:"openid"`
	Nickname   string `json:"nickname"`
	HeadImgURL string `json:"headimgurl"`
}

// UserInfo fetches the wechat user bound to the OAuth token. The openid
// from the exchange is a required query parameter.
func (a *WechatAdapter) UserInfo(ctx context.Context, creds *Credentials) (*RemoteUser, error) {
	if creds.OpenID == "" {
		return nil, fmt.Errorf("%w: missing openid", oauth.ErrIdentityFetch)
	}

	var payload wechatUserResponse
	url := fmt.Sprintf("%s/sns/userinfo?access_token=%s&openid=%s&lang=zh_CN",
		a.cfg.APIBase, creds.AccessToken, creds.OpenID)
	if err := getJSON(ctx, a.httpClient, url, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrIdentityFetch, err)
	}
	if payload.failed() || payload.OpenID == "" {
		return nil, fmt.Errorf("%w: errcode=%d errmsg=%s",
			oauth.ErrIdentityFetch, payload.ErrCode, payload.ErrMsg)
	}

	return &RemoteUser{
		ID:        payload.OpenID,
		Username:  payload.Nickname,
		AvatarURL: payload.HeadImgURL,
	}, nil
}

type wechatDraftArticle struct {
	Title              string `json:"title"`
	Author             string `json:"author,omitempty"`
	Content            string `json:"content"`
	ThumbMediaID       string `json:"thumb_media_id,omitempty"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
}

type wechatDraftRequest struct {
	Articles []wechatDraftArticle `json:"articles"`
}

type wechatDraftResponse struct {
	wechatError
	MediaID string `json:"media_id"`
}

type wechatSubmitRequest struct {
	MediaID string `json:"media_id"`
}

type wechatSubmitResponse struct {
	wechatError
	PublishID int64 `json:"publish_id"`
}

// Publish creates a draft article and submits it through the free-publish
// API. Both calls authenticate with the app-wide server token, never the
// per-user OAuth token. When the cached server token cannot be refreshed
// the publish fails; a stale token is never retried.
func (a *WechatAdapter) Publish(
	ctx context.Context,
	creds *Credentials,
	post *Post,
) (*PublishResult, error) {
	if a.appTokens == nil {
		return nil, fmt.Errorf("wechat adapter: app token source not configured")
	}

	appToken, err := a.appTokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("wechat publish: app token unavailable: %w", err)
	}

	article := wechatDraftArticle{
		Title:   post.Title,
		Content: post.Text,
	}
	if article.Title == "" {
		article.Title = truncateRunes(post.Text, 32)
	}
	if s, ok := post.Settings.(*settings.WechatSettings); ok {
		article.Author = s.Author
		if s.NeedOpenComment {
			article.NeedOpenComment = 1
		}
		if s.OnlyFansCanComment {
			article.OnlyFansCanComment = 1
		}
	}

	var draft wechatDraftResponse
	draftURL := a.cfg.APIBase + "/cgi-bin/draft/add?access_token=" + appToken
	if err := postJSON(ctx, a.httpClient, draftURL, wechatDraftRequest{
		Articles: []wechatDraftArticle{article},
	}, &draft); err != nil {
		return nil, fmt.Errorf("wechat draft add failed: %w", err)
	}
	if draft.failed() || draft.MediaID == "" {
		return wechatFailure(draft.wechatError), nil
	}

	var submit wechatSubmitResponse
	submitURL := a.cfg.APIBase + "/cgi-bin/freepublish/submit?access_token=" + appToken
	if err := postJSON(ctx, a.httpClient, submitURL, wechatSubmitRequest{
		MediaID: draft.MediaID,
	}, &submit); err != nil {
		return nil, fmt.Errorf("wechat publish submit failed: %w", err)
	}
	if submit.failed() {
		return wechatFailure(submit.wechatError), nil
	}

	return &PublishResult{
		Success:        true,
		PlatformPostID: strconv.FormatInt(submit.PublishID, 10),
		PublishedURL: fmt.Sprintf("https://mp.weixin.qq.com/s?__biz=%s&publish_id=%d",
			a.cfg.AppID, submit.PublishID),
	}, nil
}

func wechatFailure(e wechatError) *PublishResult {
	return &PublishResult{
		Success:     false,
		Error:       e.ErrMsg,
		ErrorCode:   strconv.Itoa(e.ErrCode),
		NeedsReauth: wechatReauthCodes[e.ErrCode],
		Transient:   wechatTransientCodes[e.ErrCode],
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
