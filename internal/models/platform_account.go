package models

import (
	"time"

	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
)

// PlatformAccount represents one connected external social-media account
// bound to a local user.
type PlatformAccount struct {
	ID       string            `gorm:"primaryKey"`
	UserID   string            `gorm:"not null;uniqueIndex:idx_account_user_platform,priority:1"`
	Platform platform.Platform `gorm:"not null;uniqueIndex:idx_account_user_platform,priority:2"`

	// Remote identity (snapshot at connect time)
	PlatformUserID   string `gorm:"not null;uniqueIndex:idx_account_user_platform,priority:3"`
	PlatformUsername string
	AvatarURL        string

	// Token storage (should be encrypted at rest in production)
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
	TokenExpiry  *time.Time

	IsConnected bool `gorm:"not null;default:true;index"`

	// Activity tracking
	LastPublishedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PlatformAccount) TableName() string {
	return "platform_accounts"
}

// TokenExpired reports whether the stored access token is expired or will
// expire within skew. Accounts without a recorded expiry never expire here;
// the provider rejects such tokens at call time instead.
func (a *PlatformAccount) TokenExpired(skew time.Duration) bool {
	if a.TokenExpiry == nil {
		return false
	}
	return oauth.IsExpiredNow(*a.TokenExpiry, skew)
}

// HasRefreshToken reports whether a refresh path is available.
func (a *PlatformAccount) HasRefreshToken() bool {
	return a.RefreshToken != ""
}
