package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"subscribely/internal/models/db_models"
)

// ErrDuplicateOutcome is returned when a payment with the same provider
// payment id and status already exists.
var ErrDuplicateOutcome = errors.New("payment outcome already recorded")

type PaymentRepository interface {
	Create(ctx context.Context, payment *db_models.Payment) error
	OutcomeExists(ctx context.Context, providerPaymentID string, status db_models.PaymentStatus) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (p *paymentRepository) Create(ctx context.Context, payment *db_models.Payment) error {
	err := p.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateOutcome, err)
	}
	return err
}

func (p *paymentRepository) OutcomeExists(ctx context.Context, providerPaymentID string, status db_models.PaymentStatus) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&db_models.Payment{}).
		Where("provider_payment_id = ? AND status = ?", providerPaymentID, status).
		Count(&count).Error

	return count > 0, err
}

func (p *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Payment, error) {
	var payments []db_models.Payment
	err := p.db.WithContext(ctx).
		Preload("Subscription.Plan").
		Where("user_id = ?", userID).
		Order("payment_date DESC").
		Find(&payments).Error

	if err != nil {
		return nil, err
	}

	return payments, nil
}
