package platform

import "fmt"

// Platform identifies a supported third-party publishing platform.
type Platform string

const (
	Wechat      Platform = "wechat"
	Weibo       Platform = "weibo"
	Douyin      Platform = "douyin"
	Xiaohongshu Platform = "xiaohongshu"
)

// All lists every supported platform in registry order.
var All = []Platform{Wechat, Weibo, Douyin, Xiaohongshu}

// Valid reports whether p names a known platform.
func (p Platform) Valid() bool {
	switch p {
	case Wechat, Weibo, Douyin, Xiaohongshu:
		return true
	default:
		return false
	}
}

func (p Platform) String() string {
	return string(p)
}

// Limits describes per-platform content constraints enforced before publish.
type Limits struct {
	MaxTextLength    int  `json:"max_text_length"`
	MaxImages        int  `json:"max_images"`
	SupportsVideo    bool `json:"supports_video"`
	SupportsRichText bool `json:"supports_rich_text"`
}

// OAuthEndpoints holds the provider's OAuth2 endpoints and requested scope.
type OAuthEndpoints struct {
	AuthURL  string `json:"auth_url"`
	TokenURL string `json:"token_url"`
	Scope    string `json:"scope"`
}

// Config is the static registry entry for one platform. Pure data,
// never mutated at runtime.
type Config struct {
	Platform    Platform       `json:"platform"`
	DisplayName string         `json:"display_name"`
	Limits      Limits         `json:"limits"`
	OAuth       OAuthEndpoints `json:"oauth"`
}

var registry = map[Platform]Config{
	Wechat: {
		Platform:    Wechat,
		DisplayName: "微信公众号",
		Limits: Limits{
			MaxTextLength:    20000,
			MaxImages:        9,
			SupportsVideo:    false,
			SupportsRichText: true,
		},
		OAuth: OAuthEndpoints{
			AuthURL:  "https://open.weixin.qq.com/connect/oauth2/authorize",
			TokenURL: "https://api.weixin.qq.com/sns/oauth2/access_token",
			Scope:    "snsapi_userinfo",
		},
	},
	Weibo: {
		Platform:    Weibo,
		DisplayName: "微博",
		Limits: Limits{
			MaxTextLength:    2000,
			MaxImages:        9,
			SupportsVideo:    true,
			SupportsRichText: false,
		},
		OAuth: OAuthEndpoints{
			AuthURL:  "https://api.weibo.com/oauth2/authorize",
			TokenURL: "https://api.weibo.com/oauth2/access_token",
			Scope:    "all",
		},
	},
	Douyin: {
		Platform:    Douyin,
		DisplayName: "抖音",
		Limits: Limits{
			MaxTextLength:    1000,
			MaxImages:        35,
			SupportsVideo:    true,
			SupportsRichText: false,
		},
		OAuth: OAuthEndpoints{
			AuthURL:  "https://open.douyin.com/platform/oauth/connect",
			TokenURL: "https://open.douyin.com/oauth/access_token/",
			Scope:    "user_info,video.create",
		},
	},
	Xiaohongshu: {
		Platform:    Xiaohongshu,
		DisplayName: "小红书",
		Limits: Limits{
			MaxTextLength:    1000,
			MaxImages:        18,
			SupportsVideo:    true,
			SupportsRichText: false,
		},
		OAuth: OAuthEndpoints{
			AuthURL:  "https://open.xiaohongshu.com/oauth/authorize",
			TokenURL: "https://open.xiaohongshu.com/oauth/access_token",
			Scope:    "note.publish,user.info",
		},
	},
}

// GetConfig returns the registry entry for p. An unknown platform is a
// programming error, not a runtime user error.
func GetConfig(p Platform) (Config, error) {
	cfg, ok := registry[p]
	if !ok {
		return Config{}, fmt.Errorf("unknown platform: %q", p)
	}
	return cfg, nil
}

// MustGetConfig is GetConfig for callers that already validated p.
func MustGetConfig(p Platform) Config {
	cfg, err := GetConfig(p)
	if err != nil {
		panic(err)
	}
	return cfg
}
