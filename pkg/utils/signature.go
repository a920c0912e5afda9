package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignWebhookBody returns the hex HMAC-SHA256 of body keyed with secret,
// the same digest the provider sends in X-Razorpay-Signature.
func SignWebhookBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks signatureHeader against the exact raw body
// bytes in constant time. An empty header yields ErrMissingSignature.
func VerifyWebhookSignature(body []byte, signatureHeader, secret string) error {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" {
		return ErrMissingSignature
	}
	if secret == "" {
		return ErrInvalidSignature
	}

	expected := SignWebhookBody(body, secret)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}
