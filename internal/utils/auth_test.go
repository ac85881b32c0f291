package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	ok, err := VerifyPassword(hash, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("not-a-bcrypt-hash", "123456")
	assert.Error(t, err)
}

func TestSessionToken(t *testing.T) {
	tok, err := NewSessionToken("secret", "410544b2-4001-4271-9855-fec4b6a6442a", "User", "user@nextmail.com", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	claims, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "410544b2-4001-4271-9855-fec4b6a6442a", claims.Subject)
	assert.Equal(t, "user@nextmail.com", claims.Email)

	_, err = ParseSessionToken("other-secret", tok.Token)
	assert.Error(t, err)

	expired, err := NewSessionToken("secret", "u", "User", "user@nextmail.com", -time.Minute)
	require.NoError(t, err)
	_, err = ParseSessionToken("secret", expired.Token)
	assert.Error(t, err)
}
