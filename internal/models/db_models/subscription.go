package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubStatusPending   SubscriptionStatus = "pending"
	SubStatusActive    SubscriptionStatus = "active"
	SubStatusCancelled SubscriptionStatus = "cancelled"
	SubStatusExpired   SubscriptionStatus = "expired"
)

type Subscription struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`
	PlanID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status   SubscriptionStatus `gorm:"size:20;index;not null;default:pending"`
	IsYearly bool               `gorm:"default:false"`
	// Price tier selected at subscribe time, major currency units.
	Amount decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	StartDate  int64 `gorm:"not null"`
	EndDate    int64 `gorm:"not null"`
	CancelDate *int64

	// Join key for inbound webhooks; nullable until the provider order exists.
	ProviderOrderID *string `gorm:"size:100;uniqueIndex"`

	Plan Plan `gorm:"foreignKey:PlanID"`
}
