package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-socialhub/socialhub/internal/platform/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newXiaohongshuServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		var req xhsTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			json.NewEncoder(w).Encode(map[string]any{"code": "invalid_request", "message": "missing code"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "xhs-token",
			"refresh_token": "xhs-refresh",
			"expires_in":    7200,
			"user_id":       "xhs-user-1",
		})
	})
	mux.HandleFunc("/oauth/refresh_token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "xhs-token-2",
			"refresh_token": "xhs-refresh-2",
			"expires_in":    7200,
			"user_id":       "xhs-user-1",
		})
	})
	mux.HandleFunc("/api/sns/v1/user/info", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xhs-token" {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{"code": "unauthorized", "message": "bad token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user_id":  "xhs-user-1",
			"nickname": "小红书用户",
			"avatar":   "https://example.com/avatar.png",
		})
	})
	mux.HandleFunc("/api/sns/v1/notes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer xhs-token":
			var req xhsNoteRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
				json.NewEncoder(w).Encode(map[string]any{"code": "invalid_request", "message": "empty content"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"note_id": "note-789"})
		case "Bearer rate-limited":
			json.NewEncoder(w).Encode(map[string]any{"code": "rate_limit", "message": "too many notes"})
		default:
			json.NewEncoder(w).Encode(map[string]any{"code": "token_expired", "message": "token expired"})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestXiaohongshuAdapter(srv *httptest.Server) *XiaohongshuAdapter {
	return NewXiaohongshuAdapter(XiaohongshuConfig{
		ClientID:     "xhs-client",
		ClientSecret: "xhs-secret",
		RedirectURL:  "https://hub.example.com/callback/xiaohongshu",
		APIBase:      srv.URL,
	}, srv.Client())
}

func TestXiaohongshuAuthURL(t *testing.T) {
	srv := newXiaohongshuServer(t)
	a := newTestXiaohongshuAdapter(srv)

	u := a.AuthURL("state-token")
	assert.Contains(t, u, "client_id=xhs-client")
	assert.Contains(t, u, "state=state-token")
}

func TestXiaohongshuExchangeCode(t *testing.T) {
	srv := newXiaohongshuServer(t)
	a := newTestXiaohongshuAdapter(srv)

	creds, err := a.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "xhs-token", creds.AccessToken)
	assert.Equal(t, "xhs-refresh", creds.RefreshToken)
	assert.Equal(t, "xhs-user-1", creds.OpenID)
}

func TestXiaohongshuRefresh(t *testing.T) {
	srv := newXiaohongshuServer(t)
	a := newTestXiaohongshuAdapter(srv)

	creds, err := a.Refresh(context.Background(), "xhs-refresh")
	require.NoError(t, err)
	assert.Equal(t, "xhs-token-2", creds.AccessToken)
	assert.Equal(t, "xhs-refresh-2", creds.RefreshToken)
}

func TestXiaohongshuUserInfo(t *testing.T) {
	srv := newXiaohongshuServer(t)
	a := newTestXiaohongshuAdapter(srv)

	user, err := a.UserInfo(context.Background(), &Credentials{AccessToken: "xhs-token"})
	require.NoError(t, err)
	assert.Equal(t, "xhs-user-1", user.ID)
	assert.Equal(t, "小红书用户", user.Username)

	_, err = a.UserInfo(context.Background(), &Credentials{AccessToken: "wrong"})
	require.Error(t, err)
}

func TestXiaohongshuPublish(t *testing.T) {
	srv := newXiaohongshuServer(t)
	a := newTestXiaohongshuAdapter(srv)

	result, err := a.Publish(context.Background(), &Credentials{AccessToken: "xhs-token"}, &Post{
		Title:  "笔记标题",
		Text:   "笔记内容",
		Images: []string{"https://example.com/1.jpg"},
		Settings: &settings.XiaohongshuSettings{
			Type:   "xiaohongshu",
			Topics: []string{"旅行", "美食"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "note-789", result.PlatformPostID)
	assert.Contains(t, result.PublishedURL, "note-789")
}

func TestXiaohongshuPublishFailures(t *testing.T) {
	srv := newXiaohongshuServer(t)
	a := newTestXiaohongshuAdapter(srv)

	expired, err := a.Publish(context.Background(), &Credentials{AccessToken: "stale"}, &Post{Text: "x"})
	require.NoError(t, err)
	assert.False(t, expired.Success)
	assert.Equal(t, "token_expired", expired.ErrorCode)
	assert.True(t, expired.NeedsReauth)

	limited, err := a.Publish(context.Background(), &Credentials{AccessToken: "rate-limited"}, &Post{Text: "x"})
	require.NoError(t, err)
	assert.False(t, limited.Success)
	assert.True(t, limited.Transient)
}

func TestRegistry(t *testing.T) {
	srv := newXiaohongshuServer(t)
	xhs := newTestXiaohongshuAdapter(srv)

	reg := NewRegistry(xhs)
	got, err := reg.Get(xhs.Platform())
	require.NoError(t, err)
	assert.Same(t, xhs, got)

	_, err = reg.Get("weibo")
	require.Error(t, err)
	assert.Len(t, reg.Platforms(), 1)
}
