package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-socialhub/socialhub/internal/models"
	"github.com/go-socialhub/socialhub/internal/platform"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAccount returns a platform account by ID.
func (s *Store) GetAccount(id string) (*models.PlatformAccount, error) {
	var acct models.PlatformAccount
	if err := s.db.Where("id = ?", id).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// GetAccountByRemoteIdentity returns the account for one remote identity,
// the unique (user, platform, platform user id) triple.
func (s *Store) GetAccountByRemoteIdentity(
	userID string,
	p platform.Platform,
	platformUserID string,
) (*models.PlatformAccount, error) {
	var acct models.PlatformAccount
	err := s.db.Where(
		"user_id = ? AND platform = ? AND platform_user_id = ?",
		userID, p, platformUserID,
	).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// ListAccountsByUser returns all of a user's platform accounts.
func (s *Store) ListAccountsByUser(userID string) ([]models.PlatformAccount, error) {
	var accts []models.PlatformAccount
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accts).Error; err != nil {
		return nil, err
	}
	return accts, nil
}

// UpsertAccount creates the account for its remote identity or, if one
// already exists, refreshes its credentials and reconnects it.
func (s *Store) UpsertAccount(acct *models.PlatformAccount) (*models.PlatformAccount, error) {
	existing, err := s.GetAccountByRemoteIdentity(
		acct.UserID, acct.Platform, acct.PlatformUserID,
	)
	switch {
	case err == nil:
		existing.PlatformUsername = acct.PlatformUsername
		existing.AvatarURL = acct.AvatarURL
		existing.AccessToken = acct.AccessToken
		existing.RefreshToken = acct.RefreshToken
		existing.TokenExpiry = acct.TokenExpiry
		existing.IsConnected = true
		if err := s.db.Save(existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update platform account: %w", err)
		}
		return existing, nil
	case errors.Is(err, ErrRecordNotFound):
		if acct.ID == "" {
			acct.ID = uuid.New().String()
		}
		acct.IsConnected = true
		if err := s.db.Create(acct).Error; err != nil {
			return nil, fmt.Errorf("failed to create platform account: %w", err)
		}
		return acct, nil
	default:
		return nil, err
	}
}

// UpdateAccountTokens persists a refreshed token set on an account.
func (s *Store) UpdateAccountTokens(
	id, accessToken, refreshToken string,
	expiry *time.Time,
) error {
	updates := map[string]any{
		"access_token": accessToken,
		"token_expiry": expiry,
	}
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	res := s.db.Model(&models.PlatformAccount{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DisconnectAccount clears stored tokens and marks the account as
// disconnected. The row itself is kept for reconnect and history.
func (s *Store) DisconnectAccount(id string) error {
	res := s.db.Model(&models.PlatformAccount{}).Where("id = ?", id).Updates(map[string]any{
		"access_token":  "",
		"refresh_token": "",
		"token_expiry":  nil,
		"is_connected":  false,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// TouchAccountPublished records the time of the last successful publish.
func (s *Store) TouchAccountPublished(id string, at time.Time) error {
	return s.db.Model(&models.PlatformAccount{}).
		Where("id = ?", id).
		Update("last_published_at", at).Error
}
