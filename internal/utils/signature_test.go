package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyRazorpaySignature_Valid(t *testing.T) {
	secret := "test_secret"
	sig := signPayload("order_abc123", "pay_xyz789", secret)

	assert.True(t, VerifyRazorpaySignature("order_abc123", "pay_xyz789", sig, secret))
}

func TestVerifyRazorpaySignature_Tampered(t *testing.T) {
	secret := "test_secret"
	sig := signPayload("order_abc123", "pay_xyz789", secret)

	// Un seul caractère modifié suffit à invalider la signature
	tampered := []byte(sig)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}

	assert.False(t, VerifyRazorpaySignature("order_abc123", "pay_xyz789", string(tampered), secret))
}

func TestVerifyRazorpaySignature_WrongSecret(t *testing.T) {
	sig := signPayload("order_abc123", "pay_xyz789", "secret_a")
	assert.False(t, VerifyRazorpaySignature("order_abc123", "pay_xyz789", sig, "secret_b"))
}

func TestVerifyRazorpaySignature_WrongPayment(t *testing.T) {
	secret := "test_secret"
	sig := signPayload("order_abc123", "pay_xyz789", secret)
	assert.False(t, VerifyRazorpaySignature("order_abc123", "pay_other", sig, secret))
}

func TestVerifyRazorpaySignature_Empty(t *testing.T) {
	assert.False(t, VerifyRazorpaySignature("order_abc123", "pay_xyz789", "", "test_secret"))
}
