package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "socialhub.db", cfg.DatabaseDSN)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5*time.Minute, cfg.TokenRefreshSkew)
	assert.True(t, cfg.RateLimitEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=hub dbname=hub")
	t.Setenv("PROVIDER_TIMEOUT", "30s")
	t.Setenv("WECHAT_ENABLED", "true")
	t.Setenv("WECHAT_APP_ID", "wx-app")
	t.Setenv("WECHAT_APP_SECRET", "wx-secret")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.True(t, cfg.WechatEnabled)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())

	cfg.DatabaseDriver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.WeiboEnabled = true
	assert.Error(t, cfg.Validate(), "enabled platform without credentials must fail")

	cfg = Load()
	cfg.RateLimitStore = "redis"
	assert.Error(t, cfg.Validate(), "redis rate limit store requires an address")
}

func TestRedirectURL(t *testing.T) {
	cfg := Load()
	assert.Equal(t,
		"http://localhost:8080/auth/weibo/callback",
		cfg.RedirectURL("weibo"))
}
