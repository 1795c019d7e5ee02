package models

import (
	"time"
)

// Publish status values for ContentPublication.
const (
	PublishStatusPending = "PENDING"
	PublishStatusSuccess = "SUCCESS"
	PublishStatusFailed  = "FAILED"
)

// ContentItem is a piece of authored content that may be published to
// several platform accounts. Items arrive from the surrounding authoring
// application or inline with a publish request.
type ContentItem struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"not null;index"`
	Title  string
	Text   string      `gorm:"type:text"`
	Images StringArray `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ContentItem) TableName() string {
	return "content_items"
}

// ContentPublication is the join record for one publish attempt of one
// content item to one platform account. Uniquely keyed by
// (ContentID, PlatformAccountID); re-publishing upserts the same row.
type ContentPublication struct {
	ID                string `gorm:"primaryKey"`
	ContentID         string `gorm:"not null;uniqueIndex:idx_publication_content_account,priority:1"`
	PlatformAccountID string `gorm:"not null;uniqueIndex:idx_publication_content_account,priority:2"`

	PublishStatus  string `gorm:"not null;default:'PENDING';index"`
	PlatformPostID string
	PublishedURL   string
	ErrorMessage   string `gorm:"type:text"`
	ErrorCode      string

	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ContentPublication) TableName() string {
	return "content_publications"
}

// IsPending reports whether the publication has not completed yet.
func (p *ContentPublication) IsPending() bool {
	return p.PublishStatus == PublishStatusPending
}

// Succeeded reports whether the last attempt published successfully.
func (p *ContentPublication) Succeeded() bool {
	return p.PublishStatus == PublishStatusSuccess
}
