package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAccountNotFound is returned when the account does not exist or
	// belongs to another user. The two cases are deliberately not
	// distinguished to callers.
	ErrAccountNotFound = errors.New("platform account not found")

	// ErrAccountNotConnected is returned when publishing or refreshing
	// against a disconnected account. No outbound call is made.
	ErrAccountNotConnected = errors.New("platform account is not connected")

	// ErrReauthRequired is returned when the stored token is expired and
	// no refresh path exists; the user must re-authorize.
	ErrReauthRequired = errors.New("platform account requires re-authorization")

	// ErrContentNotFound is returned when the content item does not exist
	// or belongs to another user.
	ErrContentNotFound = errors.New("content item not found")

	// ErrConfigNotFound is returned when the publish config does not
	// exist or belongs to another user.
	ErrConfigNotFound = errors.New("publish config not found")

	// ErrConfigPlatformMismatch is returned when a publish config is used
	// against an account on a different platform.
	ErrConfigPlatformMismatch = errors.New("publish config is for a different platform")
)

// ContentLimitError reports content that violates the target platform's
// limits. It carries one message per violation.
type ContentLimitError struct {
	Violations []string
}

func (e *ContentLimitError) Error() string {
	return fmt.Sprintf("content exceeds platform limits: %s", strings.Join(e.Violations, "; "))
}
