package store

import "github.com/go-socialhub/socialhub/internal/models"

// CountConnectedAccountsByPlatform returns the number of connected accounts
// per platform, feeding the connected-accounts gauge.
func (s *Store) CountConnectedAccountsByPlatform() (map[string]int64, error) {
	type row struct {
		Platform string
		Count    int64
	}
	var rows []row
	err := s.db.Model(&models.PlatformAccount{}).
		Select("platform, count(*) as count").
		Where("is_connected = ?", true).
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Platform] = r.Count
	}
	return out, nil
}

// CountPendingPublications returns how many publication records are still
// PENDING across all users.
func (s *Store) CountPendingPublications() (int64, error) {
	var count int64
	err := s.db.Model(&models.ContentPublication{}).
		Where("publish_status = ?", models.PublishStatusPending).
		Count(&count).Error
	return count, err
}
