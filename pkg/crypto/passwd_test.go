package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundtrip(t *testing.T) {
	salt := NewSalt()
	require.Len(t, salt, 16)

	hash, err := HashPassword("123456", salt)
	require.NoError(t, err)
	assert.True(t, VerifyPassword("123456", salt, hash))
	assert.False(t, VerifyPassword("wrong", salt, hash))

	// 相同明文不同盐哈希不同
	other := NewSalt()
	assert.False(t, VerifyPassword("123456", other, hash))
}

func TestVerifyRejectsNonBcrypt(t *testing.T) {
	salt := NewSalt()
	assert.False(t, VerifyPassword("123456", salt, "plaintext-or-md5-legacy"))
	assert.False(t, VerifyPassword("123456", salt, ""))
}

func TestSaltRandomness(t *testing.T) {
	a, b := NewSalt(), NewSalt()
	assert.NotEqual(t, a, b)
}
