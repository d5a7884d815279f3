package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndCompareHash(t *testing.T) {
	hash, err := GenerateHash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	// never store the plain text
	assert.NotEqual(t, "correct horse battery staple", hash)

	ok, err := CompareHash(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareHash_WrongPassword(t *testing.T) {
	hash, err := GenerateHash("correct horse battery staple")
	require.NoError(t, err)

	ok, _ := CompareHash(hash, "incorrect horse")
	assert.False(t, ok)
}
