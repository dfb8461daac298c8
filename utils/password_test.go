package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("mypassword")
	require.NoError(t, err)
	assert.NotEqual(t, "mypassword", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correctpassword")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("correctpassword", hash))
	assert.False(t, VerifyPassword("wrongpassword", hash))
	assert.False(t, VerifyPassword("correctpassword", "not-a-hash"))
	assert.False(t, VerifyPassword("correctpassword", "correctpassword"))
}
