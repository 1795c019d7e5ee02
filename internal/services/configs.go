package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-socialhub/socialhub/internal/models"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/platform/settings"
	"github.com/go-socialhub/socialhub/internal/store"
)

// ConfigService manages named publish-settings presets. Every payload is
// validated against its platform's settings schema before it is stored,
// so publish-time resolution never meets a malformed config.
type ConfigService struct {
	store *store.Store
}

// NewConfigService creates a ConfigService.
func NewConfigService(s *store.Store) *ConfigService {
	return &ConfigService{store: s}
}

// ConfigInput is the user-supplied part of a publish config.
type ConfigInput struct {
	Platform    platform.Platform `json:"platform"`
	ConfigName  string            `json:"config_name"`
	Description string            `json:"description,omitempty"`
	ConfigData  json.RawMessage   `json:"config_data"`
	IsDefault   bool              `json:"is_default,omitempty"`
}

// Create validates and persists a new config.
func (s *ConfigService) Create(userID string, in ConfigInput) (*models.PublishConfig, error) {
	if !in.Platform.Valid() {
		return nil, fmt.Errorf("unknown platform: %q", in.Platform)
	}
	if in.ConfigName == "" {
		return nil, fmt.Errorf("config_name is required")
	}
	if _, err := settings.Validate(in.Platform, in.ConfigData); err != nil {
		return nil, err
	}

	cfg := &models.PublishConfig{
		UserID:      userID,
		Platform:    in.Platform,
		ConfigName:  in.ConfigName,
		Description: in.Description,
		ConfigData:  in.ConfigData,
		IsDefault:   in.IsDefault,
	}
	if err := s.store.CreatePublishConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Update validates and saves changes to an owned config. The platform of
// an existing config never changes; the payload is re-validated against it.
func (s *ConfigService) Update(
	userID, configID string,
	in ConfigInput,
) (*models.PublishConfig, error) {
	cfg, err := s.getOwned(userID, configID)
	if err != nil {
		return nil, err
	}

	if in.Platform != "" && in.Platform != cfg.Platform {
		return nil, ErrConfigPlatformMismatch
	}
	if len(in.ConfigData) > 0 {
		if _, err := settings.Validate(cfg.Platform, in.ConfigData); err != nil {
			return nil, err
		}
		cfg.ConfigData = in.ConfigData
	}
	if in.ConfigName != "" {
		cfg.ConfigName = in.ConfigName
	}
	cfg.Description = in.Description
	cfg.IsDefault = in.IsDefault

	if err := s.store.UpdatePublishConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get returns one owned config.
func (s *ConfigService) Get(userID, configID string) (*models.PublishConfig, error) {
	return s.getOwned(userID, configID)
}

// List returns the user's configs, optionally narrowed to one platform.
func (s *ConfigService) List(
	userID string,
	p platform.Platform,
) ([]models.PublishConfig, error) {
	if p != "" && !p.Valid() {
		return nil, fmt.Errorf("unknown platform: %q", p)
	}
	return s.store.ListPublishConfigs(userID, p)
}

// Delete removes an owned config. Usage counters die with the row; join
// records referencing past publishes are unaffected.
func (s *ConfigService) Delete(userID, configID string) error {
	cfg, err := s.getOwned(userID, configID)
	if err != nil {
		return err
	}
	return s.store.DeletePublishConfig(cfg.ID)
}

func (s *ConfigService) getOwned(userID, configID string) (*models.PublishConfig, error) {
	cfg, err := s.store.GetPublishConfig(configID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	if cfg.UserID != userID {
		return nil, ErrConfigNotFound
	}
	return cfg, nil
}
