package oauth

import "time"

// ComputeExpiry converts a provider's expires-in-seconds answer into an
// absolute instant. Pure function of its inputs.
func ComputeExpiry(issuedAt time.Time, expiresIn int64) time.Time {
	return issuedAt.Add(time.Duration(expiresIn) * time.Second)
}

// IsExpired reports whether a token with the given absolute expiry should
// be treated as expired. A positive skew moves the boundary earlier, for
// proactive refresh scheduling.
func IsExpired(now, expiry time.Time, skew time.Duration) bool {
	return !now.Before(expiry.Add(-skew))
}

// IsExpiredNow is IsExpired evaluated against the wall clock.
func IsExpiredNow(expiry time.Time, skew time.Duration) bool {
	return IsExpired(time.Now(), expiry, skew)
}
