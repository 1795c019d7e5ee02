package settings

import (
	"encoding/json"
	"testing"

	"github.com/go-socialhub/socialhub/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_WeiboDefaults(t *testing.T) {
	raw := json.RawMessage(`{"type":"weibo"}`)

	got, err := Validate(platform.Weibo, raw)
	require.NoError(t, err)

	weibo, ok := got.(*WeiboSettings)
	require.True(t, ok)
	assert.Equal(t, "public", weibo.Visibility)
}

func TestValidate_WeiboVisibilityEnum(t *testing.T) {
	raw := json.RawMessage(`{"type":"weibo","visibility":"friends"}`)
	got, err := Validate(platform.Weibo, raw)
	require.NoError(t, err)
	assert.Equal(t, "friends", got.(*WeiboSettings).Visibility)

	raw = json.RawMessage(`{"type":"weibo","visibility":"everyone"}`)
	_, err = Validate(platform.Weibo, raw)
	require.ErrorIs(t, err, ErrSchema)
}

func TestValidate_TypeMismatch(t *testing.T) {
	// Schema-valid weibo payload submitted for wechat must fail with the
	// mismatch error, not a schema error.
	raw := json.RawMessage(`{"type":"weibo","visibility":"public"}`)

	_, err := Validate(platform.Wechat, raw)
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.NotErrorIs(t, err, ErrSchema)
}

func TestValidate_UnknownType(t *testing.T) {
	raw := json.RawMessage(`{"type":"tumblr"}`)
	_, err := Validate(platform.Weibo, raw)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestValidate_WechatCoverURL(t *testing.T) {
	raw := json.RawMessage(`{"type":"wechat","cover_image_url":"https://cdn.example.com/cover.jpg","author":"editor"}`)
	got, err := Validate(platform.Wechat, raw)
	require.NoError(t, err)
	assert.Equal(t, "editor", got.(*WechatSettings).Author)

	raw = json.RawMessage(`{"type":"wechat","cover_image_url":"not a url"}`)
	_, err = Validate(platform.Wechat, raw)
	require.ErrorIs(t, err, ErrSchema)
}

func TestValidate_XiaohongshuTopicsCap(t *testing.T) {
	topics := make([]string, 11)
	for i := range topics {
		topics[i] = "topic"
	}
	payload := map[string]any{"type": "xiaohongshu", "topics": topics}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	_, err = Validate(platform.Xiaohongshu, raw)
	require.ErrorIs(t, err, ErrSchema)

	payload["topics"] = topics[:10]
	raw, err = json.Marshal(payload)
	require.NoError(t, err)
	_, err = Validate(platform.Xiaohongshu, raw)
	require.NoError(t, err)
}

func TestValidate_Douyin(t *testing.T) {
	raw := json.RawMessage(`{"type":"douyin","allow_comment":true,"poi_id":"poi-123"}`)
	got, err := Validate(platform.Douyin, raw)
	require.NoError(t, err)

	douyin := got.(*DouyinSettings)
	assert.True(t, douyin.AllowComment)
	assert.Equal(t, "poi-123", douyin.PoiID)
}

func TestValidate_MalformedJSON(t *testing.T) {
	_, err := Validate(platform.Weibo, json.RawMessage(`{"type":`))
	require.ErrorIs(t, err, ErrSchema)
}
