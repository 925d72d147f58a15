package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	ok, err := h.Verify(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_OverlongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 80))
	assert.Error(t, err)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	ok, err := h.Verify(hash, strings.Repeat("x", 80))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_MalformedHash(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).Verify("not-a-hash", "x")
	assert.Error(t, err)
}

func TestNewHasher_OutOfRangeCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	assert.Equal(t, 5, NewHasher(5).cost)
}
