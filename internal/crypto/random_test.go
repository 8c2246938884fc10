package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomToken(t *testing.T) {
	token, err := RandomToken(32)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Each call generates a unique token
	token2, err := RandomToken(32)
	assert.NoError(t, err)
	assert.NotEqual(t, token, token2)

	// 32 bytes without padding encode to exactly 43 chars
	assert.Len(t, token, 43)
}

func TestRandomTokenIsURLSafe(t *testing.T) {
	token, err := RandomToken(16)
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	assert.NoError(t, err)
	assert.Len(t, decoded, 16)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}
