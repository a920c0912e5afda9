package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusPending PaymentStatus = "pending"
)

type PaymentMethod string

const (
	PaymentMethodUPI  PaymentMethod = "UPI"
	PaymentMethodCard PaymentMethod = "Card"
)

// Payment is append-only: one row per provider payment attempt.
type Payment struct {
	BaseModel
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	SubscriptionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null"` // major units, e.g. 1.00 INR
	Method         PaymentMethod   `gorm:"size:10;not null"`
	Status         PaymentStatus   `gorm:"size:20;not null;default:pending;uniqueIndex:idx_payment_provider_outcome,priority:2"`

	// (provider_payment_id, status) is unique so a redelivered outcome cannot be booked twice.
	ProviderPaymentID *string `gorm:"size:100;uniqueIndex:idx_payment_provider_outcome,priority:1"`
	ProviderOrderID   *string `gorm:"size:100;index"`

	// Verbatim provider payload, kept for audit.
	RawResponse string `gorm:"type:text;not null"`
	PaymentDate int64  `gorm:"not null;index"`

	Subscription Subscription `gorm:"foreignKey:SubscriptionID"`
}
