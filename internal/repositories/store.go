package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that must move together and runs them inside
// one database transaction when asked.
type Store interface {
	Plans() IPlanRepository
	Subscriptions() SubscriptionRepository
	Payments() PaymentRepository
	WebhookEvents() WebhookEventRepository

	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Plans() IPlanRepository { return NewPlanRepository(s.db) }

func (s *gormStore) Subscriptions() SubscriptionRepository { return NewSubscriptionRepository(s.db) }

func (s *gormStore) Payments() PaymentRepository { return NewPaymentRepository(s.db) }

func (s *gormStore) WebhookEvents() WebhookEventRepository { return NewWebhookEventRepository(s.db) }

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
