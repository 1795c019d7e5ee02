package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_AllPlatforms(t *testing.T) {
	for _, p := range All {
		cfg, err := GetConfig(p)
		require.NoError(t, err, "platform %s", p)
		assert.Equal(t, p, cfg.Platform)
		assert.NotEmpty(t, cfg.DisplayName)
		assert.Greater(t, cfg.Limits.MaxTextLength, 0)
		assert.Greater(t, cfg.Limits.MaxImages, 0)
		assert.NotEmpty(t, cfg.OAuth.AuthURL)
		assert.NotEmpty(t, cfg.OAuth.TokenURL)
	}
}

func TestGetConfig_Unknown(t *testing.T) {
	_, err := GetConfig(Platform("myspace"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown platform")
}

func TestPlatformValid(t *testing.T) {
	assert.True(t, Wechat.Valid())
	assert.True(t, Weibo.Valid())
	assert.True(t, Douyin.Valid())
	assert.True(t, Xiaohongshu.Valid())
	assert.False(t, Platform("").Valid())
	assert.False(t, Platform("twitter").Valid())
}

func TestValidateContent_WeiboTextBoundary(t *testing.T) {
	// Exactly at the limit: valid
	v, err := ValidateContent(Weibo, strings.Repeat("a", 2000), nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)

	// One over: invalid with exactly one message
	v, err = ValidateContent(Weibo, strings.Repeat("a", 2001), nil)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Len(t, v.Errors, 1)
}

func TestValidateContent_WeiboImageBoundary(t *testing.T) {
	images := make([]string, 10)
	for i := range images {
		images[i] = "https://img.example.com/a.jpg"
	}

	v, err := ValidateContent(Weibo, "", images)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Len(t, v.Errors, 1)

	v, err = ValidateContent(Weibo, "", images[:9])
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

func TestValidateContent_AccumulatesViolations(t *testing.T) {
	images := make([]string, 10)
	v, err := ValidateContent(Weibo, strings.Repeat("x", 2001), images)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Len(t, v.Errors, 2)
}

func TestValidateContent_RuneCounting(t *testing.T) {
	// 2000 CJK characters are within the weibo limit even though the
	// byte length is three times larger.
	v, err := ValidateContent(Weibo, strings.Repeat("微", 2000), nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

func TestValidateContent_UnknownPlatform(t *testing.T) {
	_, err := ValidateContent(Platform("friendster"), "hello", nil)
	require.Error(t, err)
}
