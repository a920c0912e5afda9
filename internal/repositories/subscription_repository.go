package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"subscribely/internal/models/db_models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *db_models.Subscription) error
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*db_models.Subscription, error)
	// FindByProviderOrderIDForUpdate row-locks the match for the rest of the
	// surrounding transaction.
	FindByProviderOrderIDForUpdate(ctx context.Context, orderID string) (*db_models.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Subscription, error)
	HasStatus(ctx context.Context, userID uuid.UUID, status db_models.SubscriptionStatus) (bool, error)
	SetProviderOrderID(ctx context.Context, id uuid.UUID, orderID string) error
	SaveState(ctx context.Context, sub *db_models.Subscription) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (s *subscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error
}

func (s *subscriptionRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("id = ? AND user_id = ?", id, userID).
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (s *subscriptionRepository) FindByProviderOrderIDForUpdate(ctx context.Context, orderID string) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("provider_order_id = ?", orderID).
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (s *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error

	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (s *subscriptionRepository) HasStatus(ctx context.Context, userID uuid.UUID, status db_models.SubscriptionStatus) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error

	return count > 0, err
}

func (s *subscriptionRepository) SetProviderOrderID(ctx context.Context, id uuid.UUID, orderID string) error {
	return s.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("id = ?", id).
		Update("provider_order_id", orderID).Error
}

// SaveState writes the lifecycle columns. A map is used so a nil CancelDate
// clears the column.
func (s *subscriptionRepository) SaveState(ctx context.Context, sub *db_models.Subscription) error {
	return s.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"status":      sub.Status,
			"cancel_date": sub.CancelDate,
			"end_date":    sub.EndDate,
		}).Error
}

// HardDelete bypasses the soft-delete column; used only to discard a pending
// subscription whose provider order could not be created.
func (s *subscriptionRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&db_models.Subscription{}, "id = ?", id).Error
}
