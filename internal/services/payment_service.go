package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"subscribely/internal/models/response_models"
	"subscribely/internal/repositories"
	"subscribely/pkg/utils"
)

type PaymentService interface {
	ListPayments(ctx context.Context, userID uuid.UUID) ([]response_models.PaymentResponse, error)
}

type paymentService struct {
	payments repositories.PaymentRepository
}

func NewPaymentService(payments repositories.PaymentRepository) PaymentService {
	return &paymentService{payments: payments}
}

// ListPayments returns the user's payments, newest first.
func (p *paymentService) ListPayments(ctx context.Context, userID uuid.UUID) ([]response_models.PaymentResponse, error) {
	payments, err := p.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list payments: %v", utils.ErrDatabaseError, err)
	}

	result := make([]response_models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		result = append(result, response_models.NewPaymentResponse(payment))
	}
	return result, nil
}
