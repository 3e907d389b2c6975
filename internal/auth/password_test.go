package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, password := range []string{"password123", "p", "пароль з юнікодом"} {
		digest, err := h.Hash(password)
		assert.NoError(t, err)
		assert.NotEqual(t, password, digest)
		assert.True(t, h.Verify(password, digest))
	}
}

func TestHasherWrongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct horse")
	assert.NoError(t, err)
	assert.False(t, h.Verify("battery staple", digest))
}

func TestHasherSaltedDigests(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("password123")
	assert.NoError(t, err)
	second, err := h.Hash("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHasherMalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("password123", ""))
	assert.False(t, h.Verify("password123", "not-a-bcrypt-digest"))
}

func TestHasherCostClamped(t *testing.T) {
	// Out-of-range costs fall back to the bcrypt default instead of failing
	// at hash time.
	h := NewHasher(99)
	digest, err := h.Hash("password123")
	assert.NoError(t, err)
	assert.True(t, h.Verify("password123", digest))
}
