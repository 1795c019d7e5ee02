package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-socialhub/socialhub/internal/adapters"
	"github.com/go-socialhub/socialhub/internal/core"
	"github.com/go-socialhub/socialhub/internal/models"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/platform/settings"
	"github.com/go-socialhub/socialhub/internal/store"
)

// PublishService orchestrates one publish attempt of one content item to
// one platform account. It never retries on its own: a failed attempt is
// recorded FAILED and retried only by an explicit new request.
type PublishService struct {
	store    *store.Store
	accounts *AccountService
	registry *adapters.Registry
	metrics  core.Recorder
}

// NewPublishService creates a PublishService.
func NewPublishService(
	s *store.Store,
	accounts *AccountService,
	registry *adapters.Registry,
	recorder core.Recorder,
) *PublishService {
	return &PublishService{
		store:    s,
		accounts: accounts,
		registry: registry,
		metrics:  recorder,
	}
}

// PublishRequest selects what to publish where. Settings resolution order:
// an explicit ConfigID, then inline Settings, then the account platform's
// default config, then platform defaults (nil settings).
// When ContentID is empty, Title/Text/Images describe a new content item
// created for the caller before publishing.
type PublishRequest struct {
	ContentID string          `json:"content_id,omitempty"`
	AccountID string          `json:"account_id"`
	ConfigID  string          `json:"config_id,omitempty"`
	Settings  json.RawMessage `json:"settings,omitempty"`

	Title  string   `json:"title,omitempty"`
	Text   string   `json:"text,omitempty"`
	Images []string `json:"images,omitempty"`
}

// Publish runs the orchestration pipeline: resolve and gate the account,
// validate content against platform limits, resolve publish settings,
// record the join row PENDING, then perform the provider call and settle
// the row SUCCESS or FAILED. Gate failures return before any outbound
// HTTP request.
func (s *PublishService) Publish(
	ctx context.Context,
	userID string,
	req PublishRequest,
) (*models.ContentPublication, error) {
	acct, err := s.accounts.GetOwnedAccount(userID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !acct.IsConnected {
		return nil, ErrAccountNotConnected
	}

	content, err := s.resolveContent(userID, req)
	if err != nil {
		return nil, err
	}

	validation, err := platform.ValidateContent(acct.Platform, content.Text, content.Images)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, &ContentLimitError{Violations: validation.Errors}
	}

	resolved, err := s.resolveSettings(userID, acct.Platform, req)
	if err != nil {
		return nil, err
	}

	// Expired tokens are refreshed (or rejected) before the join record
	// is touched, so a reauth-required account leaves no PENDING row.
	if err := s.accounts.EnsureFreshToken(ctx, acct); err != nil {
		return nil, err
	}

	adapter, err := s.registry.Get(acct.Platform)
	if err != nil {
		return nil, err
	}

	pub, err := s.store.UpsertPublicationPending(content.ID, acct.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record publication: %w", err)
	}

	post := &adapters.Post{
		Title:    content.Title,
		Text:     content.Text,
		Images:   content.Images,
		Settings: resolved,
	}
	creds := &adapters.Credentials{
		AccessToken:  acct.AccessToken,
		RefreshToken: acct.RefreshToken,
		OpenID:       acct.PlatformUserID,
	}

	start := time.Now()
	result, err := adapter.Publish(ctx, creds, post)
	elapsed := time.Since(start)
	s.metrics.RecordExternalAPICall(acct.Platform.String(), elapsed)

	if err != nil {
		// Transport or internal failure: settle FAILED and surface the
		// recorded row, not an error, so the caller sees the outcome.
		log.Printf("[Publish] Attempt failed platform=%s content=%s: %v",
			acct.Platform, content.ID, err)
		s.metrics.RecordPublishAttempt(acct.Platform.String(), "failed", elapsed)
		if markErr := s.store.MarkPublicationFailed(pub.ID, err.Error(), "transport_error"); markErr != nil {
			log.Printf("[Publish] Failed to settle publication %s: %v", pub.ID, markErr)
		}
		return s.store.GetPublication(content.ID, acct.ID)
	}

	if !result.Success {
		log.Printf("[Publish] Provider rejected platform=%s content=%s code=%s: %s",
			acct.Platform, content.ID, result.ErrorCode, result.Error)
		s.metrics.RecordPublishAttempt(acct.Platform.String(), "rejected", elapsed)
		if markErr := s.store.MarkPublicationFailed(pub.ID, result.Error, result.ErrorCode); markErr != nil {
			log.Printf("[Publish] Failed to settle publication %s: %v", pub.ID, markErr)
		}
		return s.store.GetPublication(content.ID, acct.ID)
	}

	now := time.Now()
	if err := s.store.MarkPublicationSuccess(
		pub.ID, result.PlatformPostID, result.PublishedURL, now,
	); err != nil {
		return nil, fmt.Errorf("publish succeeded but could not be recorded: %w", err)
	}
	if err := s.store.TouchAccountPublished(acct.ID, now); err != nil {
		log.Printf("[Publish] Failed to update last published time for %s: %v", acct.ID, err)
	}

	log.Printf("[Publish] Published platform=%s content=%s post=%s",
		acct.Platform, content.ID, result.PlatformPostID)
	s.metrics.RecordPublishAttempt(acct.Platform.String(), "success", elapsed)
	return s.store.GetPublication(content.ID, acct.ID)
}

// resolveContent loads the referenced content item, or creates one from
// the inline title/text/images when no ContentID is given.
func (s *PublishService) resolveContent(
	userID string,
	req PublishRequest,
) (*models.ContentItem, error) {
	if req.ContentID == "" {
		if req.Text == "" && len(req.Images) == 0 {
			return nil, ErrContentNotFound
		}
		item := &models.ContentItem{
			UserID: userID,
			Title:  req.Title,
			Text:   req.Text,
			Images: req.Images,
		}
		if err := s.store.CreateContentItem(item); err != nil {
			return nil, err
		}
		return item, nil
	}

	content, err := s.store.GetContentItem(req.ContentID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	if content.UserID != userID {
		return nil, ErrContentNotFound
	}
	return content, nil
}

// ListPublications returns the publish history of one owned content item.
func (s *PublishService) ListPublications(
	userID, contentID string,
) ([]models.ContentPublication, error) {
	content, err := s.store.GetContentItem(contentID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	if content.UserID != userID {
		return nil, ErrContentNotFound
	}
	return s.store.ListPublicationsByContent(contentID)
}

// resolveSettings picks and validates the settings payload for the
// attempt. An explicit config wins over inline settings, which win over
// the platform's default config. Nil means platform defaults.
func (s *PublishService) resolveSettings(
	userID string,
	p platform.Platform,
	req PublishRequest,
) (any, error) {
	if req.ConfigID != "" {
		cfg, err := s.store.GetPublishConfig(req.ConfigID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, ErrConfigNotFound
			}
			return nil, err
		}
		if cfg.UserID != userID {
			return nil, ErrConfigNotFound
		}
		if cfg.Platform != p {
			return nil, ErrConfigPlatformMismatch
		}
		resolved, err := settings.Validate(p, cfg.ConfigData)
		if err != nil {
			return nil, err
		}
		if err := s.store.IncrementConfigUsage(cfg.ID); err != nil {
			log.Printf("[Publish] Failed to count usage for config %s: %v", cfg.ID, err)
		}
		return resolved, nil
	}

	if len(req.Settings) > 0 {
		return settings.Validate(p, req.Settings)
	}

	cfgs, err := s.store.ListPublishConfigs(userID, p)
	if err != nil {
		return nil, err
	}
	for i := range cfgs {
		if cfgs[i].IsDefault {
			resolved, err := settings.Validate(p, cfgs[i].ConfigData)
			if err != nil {
				return nil, err
			}
			if err := s.store.IncrementConfigUsage(cfgs[i].ID); err != nil {
				log.Printf("[Publish] Failed to count usage for config %s: %v", cfgs[i].ID, err)
			}
			return resolved, nil
		}
	}
	return nil, nil
}
