package models

import (
	"encoding/json"
	"time"

	"github.com/go-socialhub/socialhub/internal/platform"
)

// PublishConfig is a user-defined named preset of platform-specific
// publish settings. The ConfigData payload is a tagged union whose type
// field must match Platform; settings.Validate enforces the shape.
type PublishConfig struct {
	ID          string            `gorm:"primaryKey"`
	UserID      string            `gorm:"not null;index:idx_config_user_platform,priority:1"`
	Platform    platform.Platform `gorm:"not null;index:idx_config_user_platform,priority:2"`
	ConfigName  string            `gorm:"not null"`
	Description string
	ConfigData  json.RawMessage `gorm:"type:text;not null"`
	IsDefault   bool            `gorm:"not null;default:false"`
	UsageCount  int64           `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PublishConfig) TableName() string {
	return "publish_configs"
}
