package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	dbm "subscribely/internal/models/db_models"
	"subscribely/internal/models/request_models"
	"subscribely/internal/models/response_models"
	"subscribely/internal/repositories"
	"subscribely/pkg/utils"
)

type CheckoutConfig struct {
	AppName  string // shown as the merchant name in the checkout widget
	Currency string
}

type SubscriptionServiceInterface interface {
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]response_models.SubscriptionResponse, error)
	SubscribeToPlan(ctx context.Context, identity utils.Identity, req request_models.SubscribeRequest) (*response_models.CheckoutSession, error)
	CancelSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*response_models.SubscriptionResponse, error)
	RenewSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*response_models.SubscriptionResponse, error)
	SimulatePayment(ctx context.Context, userID, subscriptionID uuid.UUID) (*response_models.SimulatedPaymentResponse, error)
	HasActiveSubscription(ctx context.Context, identity utils.Identity) (bool, error)
}

type SubscriptionService struct {
	store   repositories.Store
	gateway OrderGateway
	ledger  SubscriptionLedger
	cfg     CheckoutConfig
	clock   utils.Clock
	log     *zap.Logger
}

func NewSubscriptionService(store repositories.Store, gateway OrderGateway, ledger SubscriptionLedger,
	cfg CheckoutConfig, log *zap.Logger) *SubscriptionService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &SubscriptionService{
		store:   store,
		gateway: gateway,
		ledger:  ledger,
		cfg:     cfg,
		clock:   ledger.clock,
		log:     log,
	}
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]response_models.SubscriptionResponse, error) {
	subs, err := s.store.Subscriptions().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list subscriptions: %v", utils.ErrDatabaseError, err)
	}

	result := make([]response_models.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		result = append(result, response_models.NewSubscriptionResponse(sub))
	}
	return result, nil
}

// SubscribeToPlan creates a pending subscription and a provider order for it.
// If the order cannot be created the subscription is discarded.
func (s *SubscriptionService) SubscribeToPlan(ctx context.Context, identity utils.Identity,
	req request_models.SubscribeRequest) (*response_models.CheckoutSession, error) {

	plan, err := s.store.Plans().GetPlanInfoById(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%w: get plan: %v", utils.ErrDatabaseError, err)
	}
	if plan == nil {
		return nil, utils.ErrPlanNotFound
	}

	sub := s.ledger.Open(identity.UserID, *plan, req.IsYearly)
	if err := s.store.Subscriptions().Create(ctx, &sub); err != nil {
		return nil, fmt.Errorf("%w: create subscription: %v", utils.ErrDatabaseError, err)
	}

	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   sub.Amount,
		Currency: s.cfg.Currency,
		Receipt:  ReceiptFor(sub.ID),
		Capture:  true,
	})
	if err != nil {
		s.discard(ctx, sub.ID, err)
		return nil, err
	}

	if err := s.store.Subscriptions().SetProviderOrderID(ctx, sub.ID, order.ID); err != nil {
		s.discard(ctx, sub.ID, err)
		return nil, fmt.Errorf("%w: store provider order id: %v", utils.ErrDatabaseError, err)
	}

	s.log.Info("subscription pending checkout",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("user_id", identity.UserID.String()),
		zap.String("order_id", order.ID),
		zap.String("amount", sub.Amount.StringFixed(2)))

	return &response_models.CheckoutSession{
		SubscriptionID:  sub.ID,
		RazorpayOrderID: order.ID,
		RazorpayKeyID:   s.gateway.KeyID(),
		Amount:          sub.Amount.StringFixed(2),
		Currency:        s.cfg.Currency,
		Name:            s.cfg.AppName,
		Description:     fmt.Sprintf("%s Plan Subscription", plan.Name),
		Prefill: response_models.Prefill{
			Name:  strings.TrimSpace(identity.Name),
			Email: identity.Email,
		},
	}, nil
}

// discard removes a pending subscription that never got a provider order.
func (s *SubscriptionService) discard(ctx context.Context, id uuid.UUID, cause error) {
	// the request context may already be cancelled by the gateway timeout
	if err := s.store.Subscriptions().HardDelete(context.WithoutCancel(ctx), id); err != nil {
		s.log.Error("rollback of pending subscription failed",
			zap.String("subscription_id", id.String()),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return
	}
	s.log.Warn("pending subscription discarded",
		zap.String("subscription_id", id.String()),
		zap.NamedError("cause", cause))
}

func (s *SubscriptionService) CancelSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*response_models.SubscriptionResponse, error) {
	return s.transition(ctx, userID, subscriptionID, LedgerCancel)
}

func (s *SubscriptionService) RenewSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*response_models.SubscriptionResponse, error) {
	return s.transition(ctx, userID, subscriptionID, LedgerRenew)
}

func (s *SubscriptionService) transition(ctx context.Context, userID, subscriptionID uuid.UUID, event LedgerEvent) (*response_models.SubscriptionResponse, error) {
	var updated dbm.Subscription

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		sub, err := tx.Subscriptions().FindByIDForUser(ctx, subscriptionID, userID)
		if err != nil {
			return fmt.Errorf("%w: find subscription: %v", utils.ErrDatabaseError, err)
		}
		if sub == nil {
			return utils.ErrSubscriptionNotFound
		}

		if err := s.ledger.Apply(sub, event); err != nil {
			return err
		}
		if err := tx.Subscriptions().SaveState(ctx, sub); err != nil {
			return fmt.Errorf("%w: save subscription: %v", utils.ErrDatabaseError, err)
		}

		updated = *sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := response_models.NewSubscriptionResponse(updated)
	return &resp, nil
}

// SimulatePayment books a successful payment without the provider and
// activates the subscription from any status. The amount is the
// subscription's own Amount, so yearly subscriptions book the yearly price.
// It is a development aid and only routed when dev endpoints are enabled.
func (s *SubscriptionService) SimulatePayment(ctx context.Context, userID, subscriptionID uuid.UUID) (*response_models.SimulatedPaymentResponse, error) {
	var payment dbm.Payment

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		sub, err := tx.Subscriptions().FindByIDForUser(ctx, subscriptionID, userID)
		if err != nil {
			return fmt.Errorf("%w: find subscription: %v", utils.ErrDatabaseError, err)
		}
		if sub == nil {
			return utils.ErrSubscriptionNotFound
		}

		if err := s.ledger.Apply(sub, LedgerSimulatedPayment); err != nil {
			return err
		}

		// unique per call so repeated simulations do not collide on the outcome index
		paymentID := "dev_dummy_" + uuid.NewString()
		orderID := "dev_order_" + sub.ID.String()
		if sub.ProviderOrderID != nil {
			orderID = *sub.ProviderOrderID
		}

		payment = dbm.Payment{
			UserID:            sub.UserID,
			SubscriptionID:    sub.ID,
			Amount:            sub.Amount,
			Method:            dbm.PaymentMethodCard,
			Status:            dbm.PaymentStatusSuccess,
			ProviderPaymentID: &paymentID,
			ProviderOrderID:   &orderID,
			RawResponse:       `{"dev":"simulated"}`,
			PaymentDate:       s.clock().Unix(),
		}
		if err := tx.Payments().Create(ctx, &payment); err != nil {
			return fmt.Errorf("%w: create payment: %v", utils.ErrDatabaseError, err)
		}

		if err := tx.Subscriptions().SaveState(ctx, sub); err != nil {
			return fmt.Errorf("%w: save subscription: %v", utils.ErrDatabaseError, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn("simulated payment recorded",
		zap.String("subscription_id", subscriptionID.String()),
		zap.String("payment_id", payment.ID.String()))

	return &response_models.SimulatedPaymentResponse{Status: "ok", PaymentID: payment.ID}, nil
}

func (s *SubscriptionService) HasActiveSubscription(ctx context.Context, identity utils.Identity) (bool, error) {
	ok, err := s.store.Subscriptions().HasStatus(ctx, identity.UserID, dbm.SubStatusActive)
	if err != nil {
		return false, fmt.Errorf("%w: active subscription lookup: %v", utils.ErrDatabaseError, err)
	}
	return ok, nil
}
