package oauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-socialhub/socialhub/internal/cache"
	"github.com/go-socialhub/socialhub/internal/core"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/util"
)

const (
	// StateTTL is the window within which an issued state may be redeemed.
	StateTTL = 600 * time.Second

	// stateEntropyBytes is the entropy carried by each state token.
	stateEntropyBytes = 32
)

// StateRecord binds a CSRF state token to the user and platform it was
// issued for. Stored in the shared expiring key-value backend so any
// instance may serve the provider callback.
type StateRecord struct {
	UserID      string            `json:"user_id"`
	Platform    platform.Platform `json:"platform"`
	RedirectURI string            `json:"redirect_uri,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// StateStore issues and redeems one-time OAuth CSRF states against an
// expiring key-value cache.
type StateStore struct {
	cache core.Cache[StateRecord]
	ttl   time.Duration
	now   func() time.Time
}

// NewStateStore creates a StateStore over the given cache backend.
func NewStateStore(c core.Cache[StateRecord]) *StateStore {
	return &StateStore{
		cache: c,
		ttl:   StateTTL,
		now:   time.Now,
	}
}

func stateKey(p platform.Platform, token string) string {
	return fmt.Sprintf("state:%s:%s", p, token)
}

// Issue generates an opaque state token for (userID, platform) and stores
// its record with the state TTL. The backing-store write is best effort:
// on failure the token is still returned so the caller can produce an
// auth URL, and redemption will later fail safely as not-found.
func (s *StateStore) Issue(
	ctx context.Context,
	userID string,
	p platform.Platform,
	redirectURI string,
) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("oauth: cannot issue state for unknown platform %q", p)
	}

	token, err := util.CryptoRandomToken(stateEntropyBytes)
	if err != nil {
		return "", fmt.Errorf("oauth: failed to generate state: %w", err)
	}

	record := StateRecord{
		UserID:      userID,
		Platform:    p,
		RedirectURI: redirectURI,
		CreatedAt:   s.now(),
	}

	if err := s.cache.Set(ctx, stateKey(p, token), record, s.ttl); err != nil {
		log.Printf("[OAuth] Best-effort state write failed for platform=%s: %v", p, err)
	}

	return token, nil
}

// Redeem looks up and consumes a state token. It returns ErrInvalidState
// when the token is unknown, bound to another platform, older than the
// state TTL, or already redeemed. The underlying GetDel is atomic, so a
// race between two redeem calls for the same token yields at most one
// success.
func (s *StateStore) Redeem(
	ctx context.Context,
	token string,
	p platform.Platform,
) (*StateRecord, error) {
	if token == "" {
		return nil, ErrInvalidState
	}

	record, err := s.cache.GetDel(ctx, stateKey(p, token))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrInvalidState
		}
		// Backend unavailable reads are treated as not-found, never as
		// valid.
		log.Printf("[OAuth] State lookup failed for platform=%s: %v", p, err)
		return nil, ErrInvalidState
	}

	// The key embeds the platform, but the record is checked as well so
	// a corrupted or replayed entry never validates cross-platform.
	if record.Platform != p {
		return nil, ErrInvalidState
	}

	// Enforce the window even if the backend has not evicted the key yet.
	if s.now().Sub(record.CreatedAt) > s.ttl {
		return nil, ErrInvalidState
	}

	return &record, nil
}
