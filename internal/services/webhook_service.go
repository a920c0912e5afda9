package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	dbm "subscribely/internal/models/db_models"
	"subscribely/internal/models/request_models"
	"subscribely/internal/repositories"
	mem "subscribely/pkg/memcache"
	"subscribely/pkg/metrics"
	"subscribely/pkg/utils"
)

type WebhookConfig struct {
	Secret   string        // shared HMAC key configured on the provider dashboard
	DedupTTL time.Duration // how long a delivery claim blocks a concurrent duplicate
}

// Outcome labels what a verified webhook did.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

type WebhookServiceInterface interface {
	// HandleWebhook verifies and applies one provider callback. A nil error
	// means the provider should be acknowledged, whatever the outcome.
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (Outcome, error)
}

type webhookService struct {
	store    repositories.Store
	ledger   SubscriptionLedger
	claims   mem.DeliveryStore
	validate *validator.Validate
	cfg      WebhookConfig
	clock    utils.Clock
	log      *zap.Logger
}

func NewWebhookService(store repositories.Store, ledger SubscriptionLedger, claims mem.DeliveryStore,
	cfg WebhookConfig, log *zap.Logger) WebhookServiceInterface {
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = 5 * time.Minute
	}
	return &webhookService{
		store:    store,
		ledger:   ledger,
		claims:   claims,
		validate: newPayloadValidator(),
		cfg:      cfg,
		clock:    ledger.clock,
		log:      log,
	}
}

func (w *webhookService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (Outcome, error) {
	// Nothing in the body is trusted, or stored, before this passes.
	if err := utils.VerifyWebhookSignature(rawBody, signature, w.cfg.Secret); err != nil {
		metrics.RecordWebhook("unverified", "rejected")
		w.log.Warn("webhook rejected", zap.Error(err))
		return "", err
	}

	var envelope request_models.WebhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		metrics.RecordWebhook("unknown", "error")
		return "", fmt.Errorf("%w: %v", utils.ErrInvalidPayload, err)
	}
	eventType := envelope.EventType()

	event := &dbm.WebhookEvent{
		EventType: eventType,
		Payload:   string(rawBody),
		Processed: false,
	}
	if err := w.store.WebhookEvents().Create(ctx, event); err != nil {
		metrics.RecordWebhook(eventType, "error")
		return "", fmt.Errorf("%w: record webhook event: %v", utils.ErrDatabaseError, err)
	}

	var (
		outcome Outcome
		err     error
	)
	switch eventType {
	case request_models.EventPaymentCaptured:
		outcome, err = w.applyPaymentOutcome(ctx, event, envelope, dbm.PaymentStatusSuccess, LedgerPaymentCaptured)
	case request_models.EventPaymentFailed:
		outcome, err = w.applyPaymentOutcome(ctx, event, envelope, dbm.PaymentStatusFailed, LedgerPaymentFailed)
	default:
		outcome = OutcomeIgnored
	}

	if err != nil {
		metrics.RecordWebhook(eventType, "error")
		w.log.Error("webhook processing failed",
			zap.String("event_type", eventType),
			zap.String("webhook_event_id", event.ID.String()),
			zap.Error(err))
		return "", err
	}

	metrics.RecordWebhook(eventType, string(outcome))
	w.log.Info("webhook handled",
		zap.String("event_type", eventType),
		zap.String("webhook_event_id", event.ID.String()),
		zap.String("outcome", string(outcome)))
	return outcome, nil
}

func (w *webhookService) parseEntity(envelope request_models.WebhookEnvelope) (request_models.PaymentEntity, json.RawMessage, error) {
	var entity request_models.PaymentEntity

	raw := envelope.PaymentEntityRaw()
	if len(raw) == 0 || string(raw) == "null" {
		return entity, nil, utils.NewFieldError("payload.payment.entity", "required")
	}
	if err := json.Unmarshal(raw, &entity); err != nil {
		return entity, nil, fmt.Errorf("%w: payment entity: %v", utils.ErrInvalidPayload, err)
	}

	if err := w.validate.Struct(entity); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return entity, nil, utils.NewFieldError("payload.payment.entity."+verrs[0].Field(), verrs[0].Tag())
		}
		return entity, nil, fmt.Errorf("%w: %v", utils.ErrInvalidPayload, err)
	}

	return entity, raw, nil
}

func (w *webhookService) applyPaymentOutcome(ctx context.Context, event *dbm.WebhookEvent, envelope request_models.WebhookEnvelope,
	status dbm.PaymentStatus, ledgerEvent LedgerEvent) (Outcome, error) {

	entity, raw, err := w.parseEntity(envelope)
	if err != nil {
		return "", err
	}
	paymentID, orderID := *entity.ID, *entity.OrderID

	claimKey := fmt.Sprintf("webhook:%s:%s", event.EventType, paymentID)
	claimed, err := w.claims.Claim(ctx, claimKey, w.cfg.DedupTTL)
	switch {
	case err != nil:
		// The outcome index still rejects duplicates; keep going without the claim.
		w.log.Warn("delivery claim unavailable", zap.String("key", claimKey), zap.Error(err))
	case !claimed:
		return OutcomeDuplicate, nil
	}

	outcome := OutcomeProcessed
	err = w.store.WithTx(ctx, func(tx repositories.Store) error {
		sub, err := tx.Subscriptions().FindByProviderOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("%w: find subscription by order: %v", utils.ErrDatabaseError, err)
		}
		if sub == nil {
			outcome = OutcomeUnmatched
			return nil
		}

		exists, err := tx.Payments().OutcomeExists(ctx, paymentID, status)
		if err != nil {
			return fmt.Errorf("%w: payment lookup: %v", utils.ErrDatabaseError, err)
		}
		if exists {
			outcome = OutcomeDuplicate
			return nil
		}

		payment := &dbm.Payment{
			UserID:            sub.UserID,
			SubscriptionID:    sub.ID,
			Amount:            utils.FromMinorUnits(*entity.Amount),
			Method:            methodFor(entity.Method),
			Status:            status,
			ProviderPaymentID: &paymentID,
			ProviderOrderID:   &orderID,
			RawResponse:       string(raw),
			PaymentDate:       w.clock().Unix(),
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}

		if err := w.ledger.Apply(sub, ledgerEvent); err != nil {
			// only a failure on an already expired subscription lands here;
			// the payment is still booked
			w.log.Warn("subscription transition skipped",
				zap.String("subscription_id", sub.ID.String()),
				zap.String("status", string(sub.Status)),
				zap.String("event", string(ledgerEvent)))
		} else if err := tx.Subscriptions().SaveState(ctx, sub); err != nil {
			return fmt.Errorf("%w: save subscription: %v", utils.ErrDatabaseError, err)
		}

		if err := tx.WebhookEvents().MarkProcessed(ctx, event.ID); err != nil {
			return fmt.Errorf("%w: mark webhook processed: %v", utils.ErrDatabaseError, err)
		}
		event.Processed = true
		return nil
	})

	if errors.Is(err, repositories.ErrDuplicateOutcome) {
		// Lost a race with a concurrent delivery on the unique index.
		return OutcomeDuplicate, nil
	}
	if err != nil {
		if relErr := w.claims.Release(context.WithoutCancel(ctx), claimKey); relErr != nil {
			w.log.Warn("delivery claim release failed", zap.String("key", claimKey), zap.Error(relErr))
		}
		if errors.Is(err, utils.ErrDatabaseError) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	return outcome, nil
}

// methodFor maps the provider's method field: "card" is Card, anything else UPI.
func methodFor(method string) dbm.PaymentMethod {
	if method == "card" {
		return dbm.PaymentMethodCard
	}
	return dbm.PaymentMethodUPI
}

// newPayloadValidator reports fields by their json names.
func newPayloadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
