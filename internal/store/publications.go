package store

import (
	"errors"
	"time"

	"github.com/go-socialhub/socialhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPublication returns the join record for one (content, account) pair.
func (s *Store) GetPublication(
	contentID, accountID string,
) (*models.ContentPublication, error) {
	var pub models.ContentPublication
	err := s.db.Where(
		"content_id = ? AND platform_account_id = ?", contentID, accountID,
	).First(&pub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &pub, nil
}

// ListPublicationsByContent returns all publish attempts for one content item.
func (s *Store) ListPublicationsByContent(
	contentID string,
) ([]models.ContentPublication, error) {
	var pubs []models.ContentPublication
	if err := s.db.Where("content_id = ?", contentID).
		Order("created_at ASC").
		Find(&pubs).Error; err != nil {
		return nil, err
	}
	return pubs, nil
}

// UpsertPublicationPending creates or resets the join record to PENDING
// before an outbound publish attempt.
func (s *Store) UpsertPublicationPending(
	contentID, accountID string,
) (*models.ContentPublication, error) {
	pub, err := s.GetPublication(contentID, accountID)
	switch {
	case err == nil:
		pub.PublishStatus = models.PublishStatusPending
		pub.ErrorMessage = ""
		pub.ErrorCode = ""
		if err := s.db.Save(pub).Error; err != nil {
			return nil, err
		}
		return pub, nil
	case errors.Is(err, ErrRecordNotFound):
		pub = &models.ContentPublication{
			ID:                uuid.New().String(),
			ContentID:         contentID,
			PlatformAccountID: accountID,
			PublishStatus:     models.PublishStatusPending,
		}
		if err := s.db.Create(pub).Error; err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return nil, err
	}
}

// MarkPublicationSuccess records the remote post id and URL of a
// successful publish.
func (s *Store) MarkPublicationSuccess(
	id, platformPostID, publishedURL string,
	at time.Time,
) error {
	res := s.db.Model(&models.ContentPublication{}).Where("id = ?", id).Updates(map[string]any{
		"publish_status":   models.PublishStatusSuccess,
		"platform_post_id": platformPostID,
		"published_url":    publishedURL,
		"error_message":    "",
		"error_code":       "",
		"published_at":     at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// MarkPublicationFailed records a provider-reported publish failure.
func (s *Store) MarkPublicationFailed(id, errMsg, errCode string) error {
	res := s.db.Model(&models.ContentPublication{}).Where("id = ?", id).Updates(map[string]any{
		"publish_status": models.PublishStatusFailed,
		"error_message":  errMsg,
		"error_code":     errCode,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetContentItem returns one authored content item.
func (s *Store) GetContentItem(id string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &item, nil
}

// CreateContentItem persists a content item, generating an ID when the
// caller left it empty.
func (s *Store) CreateContentItem(item *models.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return s.db.Create(item).Error
}
