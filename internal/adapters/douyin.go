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

const douyinDefaultAPIBase = "https://open.douyin.com"

// Douyin error codes that require re-authentication.
var douyinReauthCodes = map[int]bool{
	2190002: true, // invalid access_token
	2190008: true, // access_token expired
	10008:   true, // token mismatch
}

// Douyin error codes worth retrying later.
var douyinTransientCodes = map[int]bool{
	2100004: true, // system busy
	2100007: true, // rpc timeout
}

// DouyinConfig configures the douyin adapter.
type DouyinConfig struct {
	ClientKey    string
	ClientSecret string
	RedirectURL  string

	// APIBase defaults to the production douyin open host.
	APIBase string
}

// DouyinAdapter integrates douyin's open platform. Douyin names the
// client id "client_key" and wraps every response in a data envelope
// carrying error_code/description (0 means success).
type DouyinAdapter struct {
	cfg        DouyinConfig
	httpClient *http.Client
}

// NewDouyinAdapter creates a douyin adapter.
func NewDouyinAdapter(cfg DouyinConfig, httpClient *http.Client) *DouyinAdapter {
	if cfg.APIBase == "" {
		cfg.APIBase = douyinDefaultAPIBase
	}
	return &DouyinAdapter{cfg: cfg, httpClient: httpClient}
}

func (a *DouyinAdapter) Platform() platform.Platform {
	return platform.Douyin
}

type douyinAuthParams struct {
	ClientKey    string `url:"client_key"`
	ResponseType string `url:"response_type"`
	Scope        string `url:"scope"`
	RedirectURI  string `url:"redirect_uri"`
	State        string `url:"state"`
}

// AuthURL builds the douyin authorization URL.
func (a *DouyinAdapter) AuthURL(state string) string {
	params, _ := query.Values(douyinAuthParams{
		ClientKey:    a.cfg.ClientKey,
		ResponseType: "code",
		Scope:        platform.MustGetConfig(platform.Douyin).OAuth.Scope,
		RedirectURI:  a.cfg.RedirectURL,
		State:        state,
	})
	return a.cfg.APIBase + "/platform/oauth/connect/?" + params.Encode()
}

// douyinError is the error half of douyin's data envelope (error_code 0
// means success).
type douyinError struct {
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (e douyinError) failed() bool { return e.ErrorCode != 0 }

type douyinTokenData struct {
	douyinError
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"open_id"`
	Scope        string `json:"scope"`
}

type douyinTokenResponse struct {
	Data    douyinTokenData `json:"data"`
	Message string          `json:"message"`
}

type douyinCodeParams struct {
	ClientKey    string `url:"client_key"`
	ClientSecret string `url:"client_secret"`
	Code         string `url:"code"`
	GrantType    string `url:"grant_type"`
}

// ExchangeCode exchanges an authorization code for tokens. The token set
// lives inside the data envelope, not at the top level.
func (a *DouyinAdapter) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	params, err := query.Values(douyinCodeParams{
		ClientKey:    a.cfg.ClientKey,
		ClientSecret: a.cfg.ClientSecret,
		Code:         code,
		GrantType:    "authorization_code",
	})
	if err != nil {
		return nil, err
	}

	var payload douyinTokenResponse
	url := a.cfg.APIBase + "/oauth/access_token/?" + params.Encode()
	if err := getJSON(ctx, a.httpClient, url, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchangeFailed, err)
	}
	if payload.Data.failed() || payload.Data.AccessToken == "" {
		return nil, fmt.Errorf("%w: error_code=%d description=%s",
			oauth.ErrExchangeFailed, payload.Data.ErrorCode, payload.Data.Description)
	}

	return douyinCredentials(payload.Data), nil
}

type douyinRefreshParams struct {
	ClientKey    string `url:"client_key"`
	GrantType    string `url:"grant_type"`
	RefreshToken string `url:"refresh_token"`
}

// Refresh exchanges a refresh token for a new token set.
func (a *DouyinAdapter) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	params, err := query.Values(douyinRefreshParams{
		ClientKey:    a.cfg.ClientKey,
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var payload douyinTokenResponse
	url := a.cfg.APIBase + "/oauth/refresh_token/?" + params.Encode()
	if err := getJSON(ctx, a.httpClient, url, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchangeFailed, err)
	}
	if payload.Data.failed() || payload.Data.AccessToken == "" {
		return nil, fmt.Errorf("%w: error_code=%d description=%s",
			oauth.ErrExchangeFailed, payload.Data.ErrorCode, payload.Data.Description)
	}

	return douyinCredentials(payload.Data), nil
}

func douyinCredentials(d douyinTokenData) *Credentials {
	return &Credentials{
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		ExpiresIn:    d.ExpiresIn,
		OpenID:       d.OpenID,
		Scope:        d.Scope,
	}
}

type douyinUserData struct {
	douyinError
	OpenID   string `json:"open_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type douyinUserResponse struct {
	Data douyinUserData `json:"data"`
}

// UserInfo fetches the douyin account behind the token. Douyin requires
// the open_id from the exchange alongside the access token.
func (a *DouyinAdapter) UserInfo(ctx context.Context, creds *Credentials) (*RemoteUser, error) {
	if creds.OpenID == "" {
		return nil, fmt.Errorf("%w: missing open_id", oauth.ErrIdentityFetch)
	}

	var payload douyinUserResponse
	url := fmt.Sprintf("%s/oauth/userinfo/?access_token=%s&open_id=%s",
		a.cfg.APIBase, creds.AccessToken, creds.OpenID)
	if err := getJSON(ctx, a.httpClient, url, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrIdentityFetch, err)
	}
	if payload.Data.failed() || payload.Data.OpenID == "" {
		return nil, fmt.Errorf("%w: error_code=%d description=%s",
			oauth.ErrIdentityFetch, payload.Data.ErrorCode, payload.Data.Description)
	}

	return &RemoteUser{
		ID:        payload.Data.OpenID,
		Username:  payload.Data.Nickname,
		AvatarURL: payload.Data.Avatar,
	}, nil
}

type douyinCreateRequest struct {
	Text         string   `json:"text"`
	ImageList    []string `json:"image_list,omitempty"`
	PoiID        string   `json:"poi_id,omitempty"`
	AllowComment bool     `json:"allow_comment"`
	AllowDuet    bool     `json:"allow_duet"`
	AllowStitch  bool     `json:"allow_stitch"`
}

type douyinCreateData struct {
	douyinError
	ItemID   string `json:"item_id"`
	ShareURL string `json:"share_url"`
}

type douyinCreateResponse struct {
	Data douyinCreateData `json:"data"`
}

// Publish creates a douyin item with the user's OAuth token. Envelope
// failures come back in the result, not as errors.
func (a *DouyinAdapter) Publish(
	ctx context.Context,
	creds *Credentials,
	post *Post,
) (*PublishResult, error) {
	if creds.OpenID == "" {
		return nil, fmt.Errorf("douyin publish failed: missing open_id")
	}

	req := douyinCreateRequest{
		Text:      post.Text,
		ImageList: post.Images,
	}
	if s, ok := post.Settings.(*settings.DouyinSettings); ok {
		req.PoiID = s.PoiID
		req.AllowComment = s.AllowComment
		req.AllowDuet = s.AllowDuet
		req.AllowStitch = s.AllowStitch
	}

	var payload douyinCreateResponse
	url := fmt.Sprintf("%s/item/create/?access_token=%s&open_id=%s",
		a.cfg.APIBase, creds.AccessToken, creds.OpenID)
	if err := postJSON(ctx, a.httpClient, url, req, &payload); err != nil {
		return nil, fmt.Errorf("douyin publish failed: %w", err)
	}
	if payload.Data.failed() {
		return douyinFailure(payload.Data.douyinError), nil
	}
	if payload.Data.ItemID == "" {
		return nil, fmt.Errorf("douyin publish failed: empty item_id in response")
	}

	result := &PublishResult{
		Success:        true,
		PlatformPostID: payload.Data.ItemID,
		PublishedURL:   payload.Data.ShareURL,
	}
	if result.PublishedURL == "" {
		result.PublishedURL = "https://www.douyin.com/video/" + payload.Data.ItemID
	}
	return result, nil
}

func douyinFailure(e douyinError) *PublishResult {
	return &PublishResult{
		Success:     false,
		Error:       e.Description,
		ErrorCode:   strconv.Itoa(e.ErrorCode),
		NeedsReauth: douyinReauthCodes[e.ErrorCode],
		Transient:   douyinTransientCodes[e.ErrorCode],
	}
}
