package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/platform/settings"

	"github.com/google/go-querystring/query"
)

const xhsDefaultAPIBase = "https://open.xiaohongshu.com"

// Xiaohongshu error codes that require re-authentication.
var xhsReauthCodes = map[string]bool{
	"token_expired": true,
	"token_invalid": true,
	"unauthorized":  true,
}

// Xiaohongshu error codes worth retrying later.
var xhsTransientCodes = map[string]bool{
	"system_busy": true,
	"rate_limit":  true,
}

// XiaohongshuConfig configures the xiaohongshu adapter.
type XiaohongshuConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// APIBase defaults to the production xiaohongshu open host.
	APIBase string
}

// XiaohongshuAdapter integrates xiaohongshu. Unlike the other platforms
// it speaks plain JSON with bearer authentication and reports failures
// with string codes.
type XiaohongshuAdapter struct {
	cfg        XiaohongshuConfig
	httpClient *http.Client
}

// NewXiaohongshuAdapter creates a xiaohongshu adapter.
func NewXiaohongshuAdapter(cfg XiaohongshuConfig, httpClient *http.Client) *XiaohongshuAdapter {
	if cfg.APIBase == "" {
		cfg.APIBase = xhsDefaultAPIBase
	}
	return &XiaohongshuAdapter{cfg: cfg, httpClient: httpClient}
}

func (a *XiaohongshuAdapter) Platform() platform.Platform {
	return platform.Xiaohongshu
}

type xhsAuthParams struct {
	ClientID     string `url:"client_id"`
	ResponseType string `url:"response_type"`
	Scope        string `url:"scope"`
	RedirectURI  string `url:"redirect_uri"`
	State        string `url:"state"`
}

// AuthURL builds the xiaohongshu authorization URL.
func (a *XiaohongshuAdapter) AuthURL(state string) string {
	params, _ := query.Values(xhsAuthParams{
		ClientID:     a.cfg.ClientID,
		ResponseType: "code",
		Scope:        platform.MustGetConfig(platform.Xiaohongshu).OAuth.Scope,
		RedirectURI:  a.cfg.RedirectURL,
		State:        state,
	})
	return a.cfg.APIBase + "/oauth/authorize?" + params.Encode()
}

// xhsError is the code/message pair xiaohongshu mixes into response
// bodies (empty code means success).
type xhsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e xhsError) failed() bool { return e.Code != "" && e.Code != "ok" }

type xhsTokenResponse struct {
	xhsError
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       string `json:"user_id"`
	Scope        string `json:"scope"`
}

type xhsTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Code         string `json:"code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ExchangeCode exchanges an authorization code for tokens via a JSON
// token endpoint.
func (a *XiaohongshuAdapter) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	var payload xhsTokenResponse
	url := a.cfg.APIBase + "/oauth/access_token"
	if err := postJSON(ctx, a.httpClient, url, xhsTokenRequest{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		GrantType:    "authorization_code",
		Code:         code,
	}, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchangeFailed, err)
	}
	if payload.failed() || payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: code=%s message=%s",
			oauth.ErrExchangeFailed, payload.Code, payload.Message)
	}

	return xhsCredentials(payload), nil
}

// Refresh exchanges a refresh token for a new token set.
func (a *XiaohongshuAdapter) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	var payload xhsTokenResponse
	url := a.cfg.APIBase + "/oauth/refresh_token"
	if err := postJSON(ctx, a.httpClient, url, xhsTokenRequest{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	}, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrExchangeFailed, err)
	}
	if payload.failed() || payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: code=%s message=%s",
			oauth.ErrExchangeFailed, payload.Code, payload.Message)
	}

	return xhsCredentials(payload), nil
}

func xhsCredentials(p xhsTokenResponse) *Credentials {
	return &Credentials{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
		OpenID:       p.UserID,
		Scope:        p.Scope,
	}
}

type xhsUserResponse struct {
	xhsError
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// UserInfo fetches the xiaohongshu account behind the token.
func (a *XiaohongshuAdapter) UserInfo(ctx context.Context, creds *Credentials) (*RemoteUser, error) {
	var payload xhsUserResponse
	url := a.cfg.APIBase + "/api/sns/v1/user/info"
	if err := getJSONBearer(ctx, a.httpClient, url, creds.AccessToken, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrIdentityFetch, err)
	}
	if payload.failed() || payload.UserID == "" {
		return nil, fmt.Errorf("%w: code=%s message=%s",
			oauth.ErrIdentityFetch, payload.Code, payload.Message)
	}

	return &RemoteUser{
		ID:        payload.UserID,
		Username:  payload.Nickname,
		AvatarURL: payload.Avatar,
	}, nil
}

type xhsNoteRequest struct {
	Title        string   `json:"title,omitempty"`
	Content      string   `json:"content"`
	Images       []string `json:"images,omitempty"`
	Topics       []string `json:"topics,omitempty"`
	Location     string   `json:"location,omitempty"`
	AllowComment bool     `json:"allow_comment"`
}

type xhsNoteResponse struct {
	xhsError
	NoteID   string `json:"note_id"`
	ShareURL string `json:"share_url"`
}

// Publish creates a note with the user's bearer token. Provider-reported
// failures come back in the result, not as errors.
func (a *XiaohongshuAdapter) Publish(
	ctx context.Context,
	creds *Credentials,
	post *Post,
) (*PublishResult, error) {
	req := xhsNoteRequest{
		Title:   post.Title,
		Content: post.Text,
		Images:  post.Images,
	}
	if s, ok := post.Settings.(*settings.XiaohongshuSettings); ok {
		req.Topics = s.Topics
		req.Location = s.Location
		req.AllowComment = s.AllowComment
	}

	var payload xhsNoteResponse
	url := a.cfg.APIBase + "/api/sns/v1/notes"
	if err := postJSONBearer(ctx, a.httpClient, url, creds.AccessToken, req, &payload); err != nil {
		return nil, fmt.Errorf("xiaohongshu publish failed: %w", err)
	}
	if payload.failed() {
		return xhsFailure(payload.xhsError), nil
	}
	if payload.NoteID == "" {
		return nil, fmt.Errorf("xiaohongshu publish failed: empty note_id in response")
	}

	result := &PublishResult{
		Success:        true,
		PlatformPostID: payload.NoteID,
		PublishedURL:   payload.ShareURL,
	}
	if result.PublishedURL == "" {
		result.PublishedURL = "https://www.xiaohongshu.com/explore/" + payload.NoteID
	}
	return result, nil
}

func xhsFailure(e xhsError) *PublishResult {
	return &PublishResult{
		Success:     false,
		Error:       e.Message,
		ErrorCode:   e.Code,
		NeedsReauth: xhsReauthCodes[e.Code],
		Transient:   xhsTransientCodes[e.Code],
	}
}
