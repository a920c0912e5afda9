package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	dbm "subscribely/internal/models/db_models"
	"subscribely/internal/testutil/memstore"
	"subscribely/pkg/utils"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(Order), args.Error(1)
}

func (m *mockGateway) KeyID() string { return "rzp_test_key" }

type fixture struct {
	store   *memstore.Store
	gateway *mockGateway
	ledger  SubscriptionLedger
	subs    *SubscriptionService
	basic   dbm.Plan
	pro     dbm.Plan
	user    utils.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	store.Now = fixedClock
	ledger := NewSubscriptionLedger(fixedClock)
	gateway := &mockGateway{}

	f := &fixture{
		store:   store,
		gateway: gateway,
		ledger:  ledger,
		subs: NewSubscriptionService(store, gateway, ledger,
			CheckoutConfig{AppName: "Subscribely", Currency: "INR"}, zap.NewNop()),
		user: utils.Identity{UserID: uuid.New(), Email: "asha@example.com", Name: " Asha Rao "},
	}
	f.basic = store.AddPlan(dbm.Plan{
		Name:         "Basic",
		MonthlyPrice: decimal.RequireFromString("1.00"),
		YearlyPrice:  decimal.RequireFromString("10.00"),
		Features:     []string{"Basic support"},
		TrialDays:    7,
	})
	f.pro = store.AddPlan(dbm.Plan{
		Name:         "Pro",
		MonthlyPrice: decimal.RequireFromString("2.00"),
		YearlyPrice:  decimal.RequireFromString("20.00"),
		TrialDays:    14,
	})
	return f
}

// addSubscription stores a subscription for the fixture user on the Basic plan.
func (f *fixture) addSubscription(status dbm.SubscriptionStatus, orderID string) dbm.Subscription {
	sub := f.ledger.Open(f.user.UserID, f.basic, false)
	sub.Status = status
	if orderID != "" {
		sub.ProviderOrderID = &orderID
	}
	return f.store.AddSubscription(sub)
}
