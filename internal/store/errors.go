package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrAccountConflict is returned when an account with the same
	// (user, platform, platform user id) already exists
	ErrAccountConflict = errors.New("platform account already exists")
)
