package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"subscribely/internal/models/db_models"
)

type WebhookEventRepository interface {
	Create(ctx context.Context, event *db_models.WebhookEvent) error
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (w *webhookEventRepository) Create(ctx context.Context, event *db_models.WebhookEvent) error {
	return w.db.WithContext(ctx).Create(event).Error
}

func (w *webhookEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return w.db.WithContext(ctx).
		Model(&db_models.WebhookEvent{}).
		Where("id = ?", id).
		Update("processed", true).Error
}
