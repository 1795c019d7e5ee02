package store

import (
	"errors"
	"fmt"

	"github.com/go-socialhub/socialhub/internal/models"
	"github.com/go-socialhub/socialhub/internal/platform"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPublishConfig returns a publish config by ID.
func (s *Store) GetPublishConfig(id string) (*models.PublishConfig, error) {
	var cfg models.PublishConfig
	if err := s.db.Where("id = ?", id).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// ListPublishConfigs returns a user's configs, optionally filtered by
// platform. Defaults sort first.
func (s *Store) ListPublishConfigs(
	userID string,
	p platform.Platform,
) ([]models.PublishConfig, error) {
	q := s.db.Where("user_id = ?", userID)
	if p != "" {
		q = q.Where("platform = ?", p)
	}

	var cfgs []models.PublishConfig
	if err := q.Order("is_default DESC, created_at ASC").Find(&cfgs).Error; err != nil {
		return nil, err
	}
	return cfgs, nil
}

// CreatePublishConfig persists a new config. When the config is marked
// default, any previous default for the same (user, platform) is demoted
// in the same transaction.
func (s *Store) CreatePublishConfig(cfg *models.PublishConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if cfg.IsDefault {
			if err := demoteDefaults(tx, cfg.UserID, cfg.Platform, ""); err != nil {
				return err
			}
		}
		return tx.Create(cfg).Error
	})
}

// UpdatePublishConfig saves changes to an existing config, keeping the
// single-default invariant.
func (s *Store) UpdatePublishConfig(cfg *models.PublishConfig) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if cfg.IsDefault {
			if err := demoteDefaults(tx, cfg.UserID, cfg.Platform, cfg.ID); err != nil {
				return err
			}
		}
		return tx.Save(cfg).Error
	})
}

// DeletePublishConfig removes a config by ID.
func (s *Store) DeletePublishConfig(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.PublishConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// IncrementConfigUsage bumps the usage counter for a config.
func (s *Store) IncrementConfigUsage(id string) error {
	return s.db.Model(&models.PublishConfig{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func demoteDefaults(tx *gorm.DB, userID string, p platform.Platform, keepID string) error {
	q := tx.Model(&models.PublishConfig{}).
		Where("user_id = ? AND platform = ? AND is_default = ?", userID, p, true)
	if keepID != "" {
		q = q.Where("id != ?", keepID)
	}
	if err := q.Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to demote default configs: %w", err)
	}
	return nil
}
