package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-socialhub/socialhub/internal/adapters"
	"github.com/go-socialhub/socialhub/internal/core"
	"github.com/go-socialhub/socialhub/internal/models"
	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/store"
)

// AccountService drives the account connection lifecycle: the OAuth
// connect flow, token refresh and disconnect.
type AccountService struct {
	store       *store.Store
	states      *oauth.StateStore
	registry    *adapters.Registry
	metrics     core.Recorder
	refreshSkew time.Duration
}

// NewAccountService creates an AccountService.
func NewAccountService(
	s *store.Store,
	states *oauth.StateStore,
	registry *adapters.Registry,
	recorder core.Recorder,
	refreshSkew time.Duration,
) *AccountService {
	return &AccountService{
		store:       s,
		states:      states,
		registry:    registry,
		metrics:     recorder,
		refreshSkew: refreshSkew,
	}
}

// BeginConnect issues a CSRF state for (user, platform) and returns the
// provider authorization URL to redirect the user to.
func (s *AccountService) BeginConnect(
	ctx context.Context,
	userID string,
	p platform.Platform,
	redirectURI string,
) (string, error) {
	adapter, err := s.registry.Get(p)
	if err != nil {
		return "", err
	}

	state, err := s.states.Issue(ctx, userID, p, redirectURI)
	if err != nil {
		s.metrics.RecordOAuthStateIssued(p.String(), false)
		return "", err
	}
	s.metrics.RecordOAuthStateIssued(p.String(), true)

	return adapter.AuthURL(state), nil
}

// CompleteConnect finishes the OAuth flow after the provider callback:
// redeems the state, exchanges the code, fetches the remote identity and
// upserts the account record. The state redemption binds the callback to
// the user who initiated the connect. The second return value is the
// redirect destination stored when the flow began, empty if none.
func (s *AccountService) CompleteConnect(
	ctx context.Context,
	p platform.Platform,
	code, stateToken string,
) (*models.PlatformAccount, string, error) {
	adapter, err := s.registry.Get(p)
	if err != nil {
		return nil, "", err
	}

	record, err := s.states.Redeem(ctx, stateToken, p)
	if err != nil {
		s.metrics.RecordOAuthStateRedeemed(p.String(), "invalid")
		s.metrics.RecordOAuthCallback(p.String(), false)
		return nil, "", err
	}
	s.metrics.RecordOAuthStateRedeemed(p.String(), "success")

	creds, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		s.metrics.RecordOAuthCallback(p.String(), false)
		return nil, "", err
	}

	user, err := adapter.UserInfo(ctx, creds)
	if err != nil {
		s.metrics.RecordOAuthCallback(p.String(), false)
		return nil, "", err
	}

	acct := &models.PlatformAccount{
		UserID:           record.UserID,
		Platform:         p,
		PlatformUserID:   user.ID,
		PlatformUsername: user.Username,
		AvatarURL:        user.AvatarURL,
		AccessToken:      creds.AccessToken,
		RefreshToken:     creds.RefreshToken,
		TokenExpiry:      tokenExpiry(creds),
	}

	saved, err := s.store.UpsertAccount(acct)
	if err != nil {
		s.metrics.RecordOAuthCallback(p.String(), false)
		return nil, "", fmt.Errorf("failed to persist connected account: %w", err)
	}

	log.Printf("[Accounts] Connected platform=%s user=%s remote=%s",
		p, record.UserID, user.ID)
	s.metrics.RecordOAuthCallback(p.String(), true)
	return saved, record.RedirectURI, nil
}

// ListAccounts returns the user's platform accounts.
func (s *AccountService) ListAccounts(userID string) ([]models.PlatformAccount, error) {
	return s.store.ListAccountsByUser(userID)
}

// GetOwnedAccount resolves an account and enforces ownership. A foreign
// or missing account is reported identically.
func (s *AccountService) GetOwnedAccount(
	userID, accountID string,
) (*models.PlatformAccount, error) {
	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if acct.UserID != userID {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

// Disconnect clears the account's stored tokens and marks it
// disconnected. The record stays for reconnect and publish history.
func (s *AccountService) Disconnect(ctx context.Context, userID, accountID string) error {
	acct, err := s.GetOwnedAccount(userID, accountID)
	if err != nil {
		return err
	}

	if err := s.store.DisconnectAccount(acct.ID); err != nil {
		return err
	}
	log.Printf("[Accounts] Disconnected platform=%s account=%s", acct.Platform, acct.ID)
	return nil
}

// RefreshToken performs an explicit, user-requested token refresh.
func (s *AccountService) RefreshToken(
	ctx context.Context,
	userID, accountID string,
) (*models.PlatformAccount, error) {
	acct, err := s.GetOwnedAccount(userID, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.IsConnected {
		return nil, ErrAccountNotConnected
	}
	if err := s.refresh(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// EnsureFreshToken guarantees the account's access token is usable:
// a token within the refresh skew of expiry is refreshed in place, and
// an unrefreshable expired token fails with ErrReauthRequired before any
// publish call goes out.
func (s *AccountService) EnsureFreshToken(
	ctx context.Context,
	acct *models.PlatformAccount,
) error {
	if !acct.TokenExpired(s.refreshSkew) {
		return nil
	}
	return s.refresh(ctx, acct)
}

func (s *AccountService) refresh(ctx context.Context, acct *models.PlatformAccount) error {
	if !acct.HasRefreshToken() {
		return ErrReauthRequired
	}

	adapter, err := s.registry.Get(acct.Platform)
	if err != nil {
		return err
	}

	creds, err := adapter.Refresh(ctx, acct.RefreshToken)
	if err != nil {
		s.metrics.RecordTokenRefresh(acct.Platform.String(), false)
		if errors.Is(err, oauth.ErrRefreshNotSupported) {
			return ErrReauthRequired
		}
		return fmt.Errorf("token refresh failed: %w", err)
	}

	expiry := tokenExpiry(creds)
	if err := s.store.UpdateAccountTokens(
		acct.ID, creds.AccessToken, creds.RefreshToken, expiry,
	); err != nil {
		s.metrics.RecordTokenRefresh(acct.Platform.String(), false)
		return fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	acct.AccessToken = creds.AccessToken
	if creds.RefreshToken != "" {
		acct.RefreshToken = creds.RefreshToken
	}
	acct.TokenExpiry = expiry

	log.Printf("[Accounts] Refreshed token platform=%s account=%s", acct.Platform, acct.ID)
	s.metrics.RecordTokenRefresh(acct.Platform.String(), true)
	return nil
}

// tokenExpiry derives the absolute expiry of an exchanged credential.
// Providers that report no lifetime yield a nil expiry, meaning the token
// is trusted until the provider rejects it.
func tokenExpiry(creds *adapters.Credentials) *time.Time {
	if creds.ExpiresIn <= 0 {
		return nil
	}
	t := oauth.ComputeExpiry(time.Now(), creds.ExpiresIn)
	return &t
}
