package utils

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := HashPassword("monSuperMotDePasse!")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash))

	ok, err := VerifyPassword("monSuperMotDePasse!", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("bonMotDePasse")
	require.NoError(t, err)

	ok, err := VerifyPassword("mauvaisMotDePasse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	h1, err := HashPassword("pareil")
	require.NoError(t, err)
	h2, err := HashPassword("pareil")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_LegacySHA512(t *testing.T) {
	// Reconstruit un hash de l'ancienne plateforme : base64(salt)$hex(sha512(salt || password))
	salt := []byte("0123456789abcdef")
	h := sha512.New()
	h.Write(salt)
	h.Write([]byte("ancienMotDePasse"))
	legacy := base64.StdEncoding.EncodeToString(salt) + "$" + hex.EncodeToString(h.Sum(nil))

	assert.False(t, IsArgon2Hash(legacy))

	ok, err := VerifyPassword("ancienMotDePasse", legacy)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("autreMotDePasse", legacy)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("peu importe", "pas-un-hash")
	assert.Error(t, err)
}
