package services

import (
	"encoding/json"
	"testing"

	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/platform/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCreateValidatesPayload(t *testing.T) {
	env := setupServices(t, &fakeAdapter{p: platform.Weibo})

	_, err := env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "broken",
		ConfigData: json.RawMessage(`{"type":"weibo","visibility":"everyone"}`),
	})
	assert.ErrorIs(t, err, settings.ErrSchema)

	_, err = env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "mismatched",
		ConfigData: json.RawMessage(`{"type":"douyin"}`),
	})
	assert.ErrorIs(t, err, settings.ErrTypeMismatch)

	cfg, err := env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "good",
		ConfigData: json.RawMessage(`{"type":"weibo","visibility":"private"}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)
}

func TestConfigDefaultSwitching(t *testing.T) {
	env := setupServices(t, &fakeAdapter{p: platform.Weibo})

	first, err := env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "first",
		ConfigData: json.RawMessage(`{"type":"weibo"}`),
		IsDefault:  true,
	})
	require.NoError(t, err)

	second, err := env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "second",
		ConfigData: json.RawMessage(`{"type":"weibo"}`),
		IsDefault:  true,
	})
	require.NoError(t, err)

	got, err := env.configs.Get("user-1", first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault, "a new default demotes the previous one")

	got, err = env.configs.Get("user-1", second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
}

func TestConfigUpdateKeepsPlatform(t *testing.T) {
	env := setupServices(t, &fakeAdapter{p: platform.Weibo})

	cfg, err := env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "preset",
		ConfigData: json.RawMessage(`{"type":"weibo"}`),
	})
	require.NoError(t, err)

	_, err = env.configs.Update("user-1", cfg.ID, ConfigInput{
		Platform:   platform.Douyin,
		ConfigData: json.RawMessage(`{"type":"douyin"}`),
	})
	assert.ErrorIs(t, err, ErrConfigPlatformMismatch)

	updated, err := env.configs.Update("user-1", cfg.ID, ConfigInput{
		ConfigName: "renamed",
		ConfigData: json.RawMessage(`{"type":"weibo","visibility":"friends"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.ConfigName)
}

func TestConfigOwnership(t *testing.T) {
	env := setupServices(t, &fakeAdapter{p: platform.Weibo})

	cfg, err := env.configs.Create("owner", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "mine",
		ConfigData: json.RawMessage(`{"type":"weibo"}`),
	})
	require.NoError(t, err)

	_, err = env.configs.Get("intruder", cfg.ID)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	err = env.configs.Delete("intruder", cfg.ID)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	require.NoError(t, env.configs.Delete("owner", cfg.ID))
	_, err = env.configs.Get("owner", cfg.ID)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConfigListFiltersByPlatform(t *testing.T) {
	env := setupServices(t, &fakeAdapter{p: platform.Weibo})

	_, err := env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Weibo,
		ConfigName: "weibo preset",
		ConfigData: json.RawMessage(`{"type":"weibo"}`),
	})
	require.NoError(t, err)
	_, err = env.configs.Create("user-1", ConfigInput{
		Platform:   platform.Douyin,
		ConfigName: "douyin preset",
		ConfigData: json.RawMessage(`{"type":"douyin"}`),
	})
	require.NoError(t, err)

	all, err := env.configs.List("user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	weiboOnly, err := env.configs.List("user-1", platform.Weibo)
	require.NoError(t, err)
	assert.Len(t, weiboOnly, 1)
}
