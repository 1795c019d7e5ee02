package oauth

import "errors"

var (
	// ErrInvalidState is returned when a CSRF state token is missing,
	// expired, already redeemed, or bound to a different platform.
	ErrInvalidState = errors.New("oauth: invalid or expired state")

	// ErrExchangeFailed is returned when the provider rejects the
	// authorization-code exchange. The provider payload is wrapped.
	ErrExchangeFailed = errors.New("oauth: code exchange failed")

	// ErrIdentityFetch is returned when the remote user identity cannot
	// be retrieved or parsed.
	ErrIdentityFetch = errors.New("oauth: identity fetch failed")

	// ErrRefreshNotSupported signals that the platform has no refresh
	// capability; callers must re-authenticate instead.
	ErrRefreshNotSupported = errors.New("oauth: token refresh not supported")
)
