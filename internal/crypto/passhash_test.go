package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_DeterministicPerSalt(t *testing.T) {
	salt, err := RandBytes(16)
	require.NoError(t, err)

	h1 := HashPassword([]byte("secret"), salt)
	h2 := HashPassword([]byte("secret"), salt)
	require.Equal(t, h1, h2)

	other, err := RandBytes(16)
	require.NoError(t, err)
	require.NotEqual(t, h1, HashPassword([]byte("secret"), other))
}

func TestVerifyPassword(t *testing.T) {
	salt, err := RandBytes(16)
	require.NoError(t, err)
	h := HashPassword([]byte("secret"), salt)

	require.True(t, VerifyPassword([]byte("secret"), salt, h))
	require.False(t, VerifyPassword([]byte("wrong"), salt, h))
}

func TestRandBytes_Length(t *testing.T) {
	b, err := RandBytes(32)
	require.NoError(t, err)
	require.Len(t, b, 32)
}
