package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandomBytes(t *testing.T) {
	t.Run("Generate correct length", func(t *testing.T) {
		bytes, err := CryptoRandomBytes(20)
		require.NoError(t, err)
		assert.Len(t, bytes, 20)
	})

	t.Run("Generate unique values", func(t *testing.T) {
		bytes1, err := CryptoRandomBytes(20)
		require.NoError(t, err)

		bytes2, err := CryptoRandomBytes(20)
		require.NoError(t, err)

		assert.NotEqual(t, bytes1, bytes2, "Random bytes should not be identical")
	})
}

func TestCryptoRandomString(t *testing.T) {
	t.Run("Generate correct length", func(t *testing.T) {
		str, err := CryptoRandomString(20)
		require.NoError(t, err)
		assert.Len(t, str, 20)
	})

	t.Run("Odd length", func(t *testing.T) {
		str, err := CryptoRandomString(21)
		require.NoError(t, err)
		assert.Len(t, str, 21)
	})
}

func TestCryptoRandomToken(t *testing.T) {
	token, err := CryptoRandomToken(32)
	require.NoError(t, err)
	// 32 bytes base64url without padding: 43 characters
	assert.Len(t, token, 43)

	other, err := CryptoRandomToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestIsRedirectSafe(t *testing.T) {
	base := "https://hub.example.com"

	assert.True(t, IsRedirectSafe("", base))
	assert.True(t, IsRedirectSafe("/settings", base))
	assert.True(t, IsRedirectSafe("https://hub.example.com/settings", base))

	assert.False(t, IsRedirectSafe("//evil.com", base))
	assert.False(t, IsRedirectSafe("/\\evil.com", base))
	assert.False(t, IsRedirectSafe("javascript:alert(1)", base))
	assert.False(t, IsRedirectSafe("https://evil.com/settings", base))
	assert.False(t, IsRedirectSafe("/settings\r\nSet-Cookie: x", base))
}
