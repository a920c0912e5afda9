package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	secret := "whsec"
	valid := SignWebhookBody(body, secret)

	assert.NoError(t, VerifyWebhookSignature(body, valid, secret))
	assert.ErrorIs(t, VerifyWebhookSignature(body, "", secret), ErrMissingSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(body, "deadbeef", secret), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyWebhookSignature(body, valid, "other"), ErrInvalidSignature)

	tampered := []byte(`{"event":"payment.captured" }`)
	assert.ErrorIs(t, VerifyWebhookSignature(tampered, valid, secret), ErrInvalidSignature,
		"signature is bound to the exact raw bytes")
}

func TestMinorUnits(t *testing.T) {
	minor, err := ToMinorUnits(decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), minor)

	minor, err = ToMinorUnits(decimal.RequireFromString("30.55"))
	require.NoError(t, err)
	assert.Equal(t, int64(3055), minor)

	_, err = ToMinorUnits(decimal.RequireFromString("1.005"))
	assert.ErrorIs(t, err, ErrValidation)

	assert.True(t, FromMinorUnits(100).Equal(decimal.RequireFromString("1.00")))
	assert.True(t, FromMinorUnits(12345).Equal(decimal.RequireFromString("123.45")))
}

func TestAddDays(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, start+30*86400, AddDays(start, PeriodDays(false)))
	assert.Equal(t, start+365*86400, AddDays(start, PeriodDays(true)))
	assert.Equal(t, "2026-01-01T00:00:00Z", FormatUnixRFC3339(start))
	assert.Nil(t, FormatUnixPtr(nil))
}

func TestHMACTokenAuthenticator(t *testing.T) {
	auth := NewHMACTokenAuthenticator("jwt-secret")
	id := Identity{UserID: uuid.New(), Email: "asha@example.com", Name: "Asha Rao"}

	token, err := auth.CreateToken(id, time.Minute)
	require.NoError(t, err)

	got, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = NewHMACTokenAuthenticator("other").Authenticate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired, err := auth.CreateToken(id, -time.Minute)
	require.NoError(t, err)
	_, err = auth.Authenticate(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFieldErrorMatchesValidation(t *testing.T) {
	err := NewFieldError("plan_id", "required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "plan_id")
}
