package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string
	Production bool

	// SettingsRedirectPath is where the browser lands after an OAuth
	// callback, with ?connected= or ?error= appended.
	SettingsRedirectPath string

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Redis (state store + distributed caches; empty = in-memory)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// WeChat official account
	WechatEnabled   bool
	WechatAppID     string
	WechatAppSecret string

	// Weibo
	WeiboEnabled      bool
	WeiboClientID     string
	WeiboClientSecret string

	// Douyin
	DouyinEnabled      bool
	DouyinClientKey    string
	DouyinClientSecret string

	// Xiaohongshu
	XiaohongshuEnabled      bool
	XiaohongshuClientID     string
	XiaohongshuClientSecret string
	XiaohongshuAPIBase      string

	// Provider HTTP Client Settings
	ProviderTimeout            time.Duration
	ProviderInsecureSkipVerify bool

	// Token refresh skew: tokens within this window of expiry count as
	// expired and are refreshed before use.
	TokenRefreshSkew time.Duration

	// Rate limiting
	RateLimitEnabled   bool
	RateLimitPerMinute int
	PublishRatePerMin  int
	RateLimitStore     string // "memory" or "redis"

	// Metrics
	MetricsEnabled bool
	MetricsToken   string // optional bearer token protecting /metrics
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "socialhub.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		BaseURL:              getEnv("BASE_URL", "http://localhost:8080"),
		Production:           getEnvBool("PRODUCTION", false),
		SettingsRedirectPath: getEnv("SETTINGS_REDIRECT_PATH", "/settings/accounts"),
		DatabaseDriver:       driver,
		DatabaseDSN:          dsn,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		WechatEnabled:   getEnvBool("WECHAT_ENABLED", false),
		WechatAppID:     getEnv("WECHAT_APP_ID", ""),
		WechatAppSecret: getEnv("WECHAT_APP_SECRET", ""),

		WeiboEnabled:      getEnvBool("WEIBO_ENABLED", false),
		WeiboClientID:     getEnv("WEIBO_CLIENT_ID", ""),
		WeiboClientSecret: getEnv("WEIBO_CLIENT_SECRET", ""),

		DouyinEnabled:      getEnvBool("DOUYIN_ENABLED", false),
		DouyinClientKey:    getEnv("DOUYIN_CLIENT_KEY", ""),
		DouyinClientSecret: getEnv("DOUYIN_CLIENT_SECRET", ""),

		XiaohongshuEnabled:      getEnvBool("XIAOHONGSHU_ENABLED", false),
		XiaohongshuClientID:     getEnv("XIAOHONGSHU_CLIENT_ID", ""),
		XiaohongshuClientSecret: getEnv("XIAOHONGSHU_CLIENT_SECRET", ""),
		XiaohongshuAPIBase:      getEnv("XIAOHONGSHU_API_BASE", ""),

		ProviderTimeout:            getEnvDuration("PROVIDER_TIMEOUT", 15*time.Second),
		ProviderInsecureSkipVerify: getEnvBool("PROVIDER_INSECURE_SKIP_VERIFY", false),

		TokenRefreshSkew: getEnvDuration("TOKEN_REFRESH_SKEW", 5*time.Minute),

		RateLimitEnabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		PublishRatePerMin:  getEnvInt("PUBLISH_RATE_PER_MINUTE", 10),
		RateLimitStore:     getEnv("RATE_LIMIT_STORE", "memory"),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),
	}
}

// RedirectURL builds the callback URL registered with a platform.
func (c *Config) RedirectURL(platform string) string {
	return c.BaseURL + "/auth/" + platform + "/callback"
}

// Validate checks cross-field consistency before the server starts.
func (c *Config) Validate() error {
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("unsupported database driver: %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %q", c.DatabaseDriver)
	}
	if c.WechatEnabled && (c.WechatAppID == "" || c.WechatAppSecret == "") {
		return fmt.Errorf("WECHAT_APP_ID and WECHAT_APP_SECRET are required when wechat is enabled")
	}
	if c.WeiboEnabled && (c.WeiboClientID == "" || c.WeiboClientSecret == "") {
		return fmt.Errorf("WEIBO_CLIENT_ID and WEIBO_CLIENT_SECRET are required when weibo is enabled")
	}
	if c.DouyinEnabled && (c.DouyinClientKey == "" || c.DouyinClientSecret == "") {
		return fmt.Errorf("DOUYIN_CLIENT_KEY and DOUYIN_CLIENT_SECRET are required when douyin is enabled")
	}
	if c.XiaohongshuEnabled && (c.XiaohongshuClientID == "" || c.XiaohongshuClientSecret == "") {
		return fmt.Errorf(
			"XIAOHONGSHU_CLIENT_ID and XIAOHONGSHU_CLIENT_SECRET are required when xiaohongshu is enabled")
	}
	if c.RateLimitStore == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_STORE is redis")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
