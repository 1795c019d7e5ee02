package oauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeExpiry(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Deterministic regardless of call count.
	for i := 0; i < 3; i++ {
		assert.Equal(t, t0.Add(2*time.Hour), ComputeExpiry(t0, 7200))
	}

	assert.Equal(t, t0, ComputeExpiry(t0, 0))
	assert.Equal(t, t0.Add(time.Second), ComputeExpiry(t0, 1))
}

func TestIsExpired(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(expiry.Add(-time.Minute), expiry, 0))
	assert.True(t, IsExpired(expiry, expiry, 0), "now == expiry counts as expired")
	assert.True(t, IsExpired(expiry.Add(time.Second), expiry, 0))
}

func TestIsExpired_Skew(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	skew := 5 * time.Minute

	// Within the skew window the token counts as expired, so refresh is
	// triggered before the hard deadline.
	assert.True(t, IsExpired(expiry.Add(-4*time.Minute), expiry, skew))
	assert.False(t, IsExpired(expiry.Add(-6*time.Minute), expiry, skew))
}
