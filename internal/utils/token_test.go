package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-seating/internal/utils"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("correct horse battery staple", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, utils.VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, utils.VerifyPassword(hash, "wrong password"))
}

func TestRefreshTokenHashing(t *testing.T) {
	tok, err := utils.NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, tok.Raw, 96) // 48 random bytes, hex encoded

	other, err := utils.NewRefreshToken(7)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Raw, other.Raw)

	// Hashing is deterministic and never echoes the raw token.
	assert.Equal(t, utils.HashRefreshRaw(tok.Raw), utils.HashRefreshRaw(tok.Raw))
	assert.NotEqual(t, tok.Raw, utils.HashRefreshRaw(tok.Raw))
}
