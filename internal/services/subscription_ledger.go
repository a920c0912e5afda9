package services

import (
	"fmt"

	"github.com/google/uuid"
	dbm "subscribely/internal/models/db_models"
	"subscribely/pkg/metrics"
	"subscribely/pkg/utils"
)

type LedgerEvent string

const (
	LedgerPaymentCaptured  LedgerEvent = "payment_captured"
	LedgerPaymentFailed    LedgerEvent = "payment_failed"
	LedgerSimulatedPayment LedgerEvent = "simulated_payment"
	LedgerCancel           LedgerEvent = "cancel"
	LedgerRenew            LedgerEvent = "renew"
)

type transition struct {
	from []dbm.SubscriptionStatus
	to   dbm.SubscriptionStatus
}

var allStatuses = []dbm.SubscriptionStatus{
	dbm.SubStatusPending, dbm.SubStatusActive, dbm.SubStatusCancelled, dbm.SubStatusExpired,
}

// transitions is the whole subscription lifecycle. A captured payment
// activates whatever the current status is.
var transitions = map[LedgerEvent]transition{
	LedgerPaymentCaptured: {
		from: allStatuses,
		to:   dbm.SubStatusActive,
	},
	// A failed payment attempt expires the subscription.
	LedgerPaymentFailed: {
		from: []dbm.SubscriptionStatus{dbm.SubStatusPending, dbm.SubStatusActive, dbm.SubStatusCancelled},
		to:   dbm.SubStatusExpired,
	},
	LedgerSimulatedPayment: {
		from: allStatuses,
		to:   dbm.SubStatusActive,
	},
	LedgerCancel: {
		from: []dbm.SubscriptionStatus{dbm.SubStatusPending, dbm.SubStatusActive},
		to:   dbm.SubStatusCancelled,
	},
	LedgerRenew: {
		from: []dbm.SubscriptionStatus{dbm.SubStatusCancelled},
		to:   dbm.SubStatusActive,
	},
}

// SubscriptionLedger owns subscription creation and every status change.
// It never touches storage; callers persist the mutated record.
type SubscriptionLedger struct {
	clock utils.Clock
}

func NewSubscriptionLedger(clock utils.Clock) SubscriptionLedger {
	if clock == nil {
		clock = utils.SystemClock
	}
	return SubscriptionLedger{clock: clock}
}

// Open builds a pending subscription priced at the selected tier.
func (l SubscriptionLedger) Open(userID uuid.UUID, plan dbm.Plan, isYearly bool) dbm.Subscription {
	start := l.clock().Unix()
	return dbm.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Plan:      plan,
		Status:    dbm.SubStatusPending,
		IsYearly:  isYearly,
		Amount:    plan.PriceFor(isYearly),
		StartDate: start,
		EndDate:   utils.AddDays(start, utils.PeriodDays(isYearly)),
	}
}

func (l SubscriptionLedger) CanApply(status dbm.SubscriptionStatus, event LedgerEvent) bool {
	t, ok := transitions[event]
	if !ok {
		return false
	}
	for _, from := range t.from {
		if from == status {
			return true
		}
	}
	return false
}

// Apply moves sub through event, or returns a validation error and leaves
// sub untouched.
func (l SubscriptionLedger) Apply(sub *dbm.Subscription, event LedgerEvent) error {
	if !l.CanApply(sub.Status, event) {
		if event == LedgerRenew {
			return utils.ErrRenewNotAllowed
		}
		return fmt.Errorf("%w: %s from %s", utils.ErrInvalidTransition, event, sub.Status)
	}

	from := sub.Status
	now := l.clock().Unix()

	switch event {
	case LedgerCancel:
		sub.CancelDate = &now
	case LedgerRenew:
		sub.CancelDate = nil
		sub.EndDate = utils.AddDays(now, utils.RenewalPeriodDays)
	}
	sub.Status = transitions[event].to

	metrics.RecordTransition(string(from), string(sub.Status))
	return nil
}
