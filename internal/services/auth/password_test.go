package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", hash)

	assert.True(t, CheckPasswordHash("password", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestNewUserSecret(t *testing.T) {
	first, err := NewUserSecret()
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := NewUserSecret()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
