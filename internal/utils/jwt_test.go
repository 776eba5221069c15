package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCustomerJWT_Roundtrip(t *testing.T) {
	token, err := GenerateCustomerJWT(42, "client@example.com")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)

	assert.Equal(t, "42", claims["customerid"])
	assert.Equal(t, "client@example.com", claims["email"])
	assert.Equal(t, "customer", claims["role"])
}

func TestGenerateSellerJWT_Roundtrip(t *testing.T) {
	token, err := GenerateSellerJWT(7, "vendeur@example.com")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)

	assert.Equal(t, "7", claims["sellerid"])
	assert.Equal(t, "seller", claims["role"])
}

func TestParseJWT_Garbage(t *testing.T) {
	_, err := ParseJWT("pas.un.token")
	assert.Error(t, err)
}
