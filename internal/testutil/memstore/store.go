// Package memstore is an in-memory repositories.Store for service and
// controller tests. It keeps the constraints the postgres schema enforces:
// unique provider order ids on subscriptions and unique
// (provider_payment_id, status) pairs on payments.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	dbm "subscribely/internal/models/db_models"
	"subscribely/internal/repositories"
)

var ErrUniqueViolation = errors.New("memstore: unique constraint violated")

type data struct {
	plans         map[uuid.UUID]dbm.Plan
	subscriptions map[uuid.UUID]dbm.Subscription
	payments      map[uuid.UUID]dbm.Payment
	events        map[uuid.UUID]dbm.WebhookEvent
	order         map[uuid.UUID]int64 // insertion sequence, newest sorts first on ties
	seq           int64
}

func (d *data) clone() *data {
	c := &data{
		plans:         make(map[uuid.UUID]dbm.Plan, len(d.plans)),
		subscriptions: make(map[uuid.UUID]dbm.Subscription, len(d.subscriptions)),
		payments:      make(map[uuid.UUID]dbm.Payment, len(d.payments)),
		events:        make(map[uuid.UUID]dbm.WebhookEvent, len(d.events)),
		order:         make(map[uuid.UUID]int64, len(d.order)),
		seq:           d.seq,
	}
	for k, v := range d.plans {
		c.plans[k] = v
	}
	for k, v := range d.subscriptions {
		c.subscriptions[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.order {
		c.order[k] = v
	}
	return c
}

// Failures lets a test make one operation return an error.
type Failures struct {
	CreateSubscription error
	SetProviderOrderID error
	SaveState          error
	HardDelete         error
	CreatePayment      error
	CreateEvent        error
	MarkProcessed      error
	ListPayments       error
	ListSubscriptions  error
	GetPlan            error
}

type Store struct {
	mu   sync.Mutex // guards d
	txMu sync.Mutex // serializes WithTx, standing in for row locks
	d    *data

	Now  func() time.Time
	Fail Failures
}

var _ repositories.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		d: &data{
			plans:         map[uuid.UUID]dbm.Plan{},
			subscriptions: map[uuid.UUID]dbm.Subscription{},
			payments:      map[uuid.UUID]dbm.Payment{},
			events:        map[uuid.UUID]dbm.WebhookEvent{},
			order:         map[uuid.UUID]int64{},
		},
		Now: time.Now,
	}
}

func (s *Store) Plans() repositories.IPlanRepository                { return planRepo{s} }
func (s *Store) Subscriptions() repositories.SubscriptionRepository { return subRepo{s} }
func (s *Store) Payments() repositories.PaymentRepository           { return paymentRepo{s} }
func (s *Store) WebhookEvents() repositories.WebhookEventRepository { return eventRepo{s} }

// WithTx runs fn alone and restores the previous state if it fails. Writes
// made outside a transaction while fn runs are lost on rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) stamp(base *dbm.BaseModel) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	now := s.Now().Unix()
	if base.CreatedAt == 0 {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
	s.d.seq++
	s.d.order[base.ID] = s.d.seq
}

// AddPlan inserts a plan directly, bypassing the repositories.
func (s *Store) AddPlan(plan dbm.Plan) dbm.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&plan.BaseModel)
	s.d.plans[plan.ID] = plan
	return plan
}

// AddSubscription inserts a subscription directly, bypassing the repositories.
func (s *Store) AddSubscription(sub dbm.Subscription) dbm.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&sub.BaseModel)
	sub.Plan = dbm.Plan{}
	s.d.subscriptions[sub.ID] = sub
	return s.withPlan(sub)
}

func (s *Store) Subscription(id uuid.UUID) (dbm.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.d.subscriptions[id]
	return s.withPlan(sub), ok
}

func (s *Store) AllSubscriptions() []dbm.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dbm.Subscription, 0, len(s.d.subscriptions))
	for _, sub := range s.d.subscriptions {
		out = append(out, s.withPlan(sub))
	}
	return out
}

func (s *Store) AllPayments() []dbm.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dbm.Payment, 0, len(s.d.payments))
	for _, p := range s.d.payments {
		out = append(out, p)
	}
	return out
}

func (s *Store) AllWebhookEvents() []dbm.WebhookEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dbm.WebhookEvent, 0, len(s.d.events))
	for _, e := range s.d.events {
		out = append(out, e)
	}
	sortNewest(s.d.order, out, func(e dbm.WebhookEvent) (int64, uuid.UUID) { return e.CreatedAt, e.ID })
	return out
}

// withPlan mimics Preload("Plan"); caller holds mu.
func (s *Store) withPlan(sub dbm.Subscription) dbm.Subscription {
	if plan, ok := s.d.plans[sub.PlanID]; ok {
		sub.Plan = plan
	}
	return sub
}

// sortNewest orders by key then insertion, newest first; caller holds mu.
func sortNewest[T any](order map[uuid.UUID]int64, items []T, key func(T) (int64, uuid.UUID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, idi := key(items[i])
		kj, idj := key(items[j])
		if ki != kj {
			return ki > kj
		}
		return order[idi] > order[idj]
	})
}

type planRepo struct{ s *Store }

func (r planRepo) GetPlanInfoById(_ context.Context, planID uuid.UUID) (*dbm.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.GetPlan != nil {
		return nil, r.s.Fail.GetPlan
	}
	plan, ok := r.s.d.plans[planID]
	if !ok {
		return nil, nil
	}
	return &plan, nil
}

func (r planRepo) GetPlanByName(_ context.Context, name string) (*dbm.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, plan := range r.s.d.plans {
		if plan.Name == name {
			p := plan
			return &p, nil
		}
	}
	return nil, nil
}

func (r planRepo) GetAllPlans(_ context.Context) ([]dbm.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	plans := make([]dbm.Plan, 0, len(r.s.d.plans))
	for _, plan := range r.s.d.plans {
		plans = append(plans, plan)
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].MonthlyPrice.LessThan(plans[j].MonthlyPrice)
	})
	return plans, nil
}

func (r planRepo) Create(_ context.Context, plan *dbm.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.d.plans {
		if existing.Name == plan.Name {
			return ErrUniqueViolation
		}
	}
	r.s.stamp(&plan.BaseModel)
	r.s.d.plans[plan.ID] = *plan
	return nil
}

func (r planRepo) UpdatePrices(_ context.Context, plan *dbm.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.d.plans[plan.ID]
	if !ok {
		return nil
	}
	existing.MonthlyPrice = plan.MonthlyPrice
	existing.YearlyPrice = plan.YearlyPrice
	existing.UpdatedAt = r.s.Now().Unix()
	r.s.d.plans[plan.ID] = existing
	return nil
}

type subRepo struct{ s *Store }

func (r subRepo) Create(_ context.Context, sub *dbm.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.CreateSubscription != nil {
		return r.s.Fail.CreateSubscription
	}
	if sub.ProviderOrderID != nil && r.orderTaken(*sub.ProviderOrderID, uuid.Nil) {
		return ErrUniqueViolation
	}
	r.s.stamp(&sub.BaseModel)
	row := *sub
	row.Plan = dbm.Plan{}
	r.s.d.subscriptions[row.ID] = row
	return nil
}

// orderTaken reports whether another subscription holds orderID; caller holds mu.
func (r subRepo) orderTaken(orderID string, self uuid.UUID) bool {
	for id, sub := range r.s.d.subscriptions {
		if id != self && sub.ProviderOrderID != nil && *sub.ProviderOrderID == orderID {
			return true
		}
	}
	return false
}

func (r subRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*dbm.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.d.subscriptions[id]
	if !ok || sub.UserID != userID {
		return nil, nil
	}
	sub = r.s.withPlan(sub)
	return &sub, nil
}

func (r subRepo) FindByProviderOrderIDForUpdate(_ context.Context, orderID string) (*dbm.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.d.subscriptions {
		if sub.ProviderOrderID != nil && *sub.ProviderOrderID == orderID {
			s := sub
			return &s, nil
		}
	}
	return nil, nil
}

func (r subRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]dbm.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.ListSubscriptions != nil {
		return nil, r.s.Fail.ListSubscriptions
	}
	subs := make([]dbm.Subscription, 0)
	for _, sub := range r.s.d.subscriptions {
		if sub.UserID == userID {
			subs = append(subs, r.s.withPlan(sub))
		}
	}
	sortNewest(r.s.d.order, subs, func(s dbm.Subscription) (int64, uuid.UUID) { return s.CreatedAt, s.ID })
	return subs, nil
}

func (r subRepo) HasStatus(_ context.Context, userID uuid.UUID, status dbm.SubscriptionStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.d.subscriptions {
		if sub.UserID == userID && sub.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (r subRepo) SetProviderOrderID(_ context.Context, id uuid.UUID, orderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.SetProviderOrderID != nil {
		return r.s.Fail.SetProviderOrderID
	}
	sub, ok := r.s.d.subscriptions[id]
	if !ok {
		return nil
	}
	if r.orderTaken(orderID, id) {
		return ErrUniqueViolation
	}
	sub.ProviderOrderID = &orderID
	r.s.d.subscriptions[id] = sub
	return nil
}

func (r subRepo) SaveState(_ context.Context, sub *dbm.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.SaveState != nil {
		return r.s.Fail.SaveState
	}
	row, ok := r.s.d.subscriptions[sub.ID]
	if !ok {
		return nil
	}
	row.Status = sub.Status
	row.CancelDate = sub.CancelDate
	row.EndDate = sub.EndDate
	row.UpdatedAt = r.s.Now().Unix()
	r.s.d.subscriptions[sub.ID] = row
	return nil
}

func (r subRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.HardDelete != nil {
		return r.s.Fail.HardDelete
	}
	delete(r.s.d.subscriptions, id)
	delete(r.s.d.order, id)
	return nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, payment *dbm.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.CreatePayment != nil {
		return r.s.Fail.CreatePayment
	}
	if payment.ProviderPaymentID != nil {
		for _, p := range r.s.d.payments {
			if p.ProviderPaymentID != nil && *p.ProviderPaymentID == *payment.ProviderPaymentID && p.Status == payment.Status {
				return repositories.ErrDuplicateOutcome
			}
		}
	}
	r.s.stamp(&payment.BaseModel)
	row := *payment
	row.Subscription = dbm.Subscription{}
	r.s.d.payments[row.ID] = row
	return nil
}

func (r paymentRepo) OutcomeExists(_ context.Context, providerPaymentID string, status dbm.PaymentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.d.payments {
		if p.ProviderPaymentID != nil && *p.ProviderPaymentID == providerPaymentID && p.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (r paymentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]dbm.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.ListPayments != nil {
		return nil, r.s.Fail.ListPayments
	}
	payments := make([]dbm.Payment, 0)
	for _, p := range r.s.d.payments {
		if p.UserID != userID {
			continue
		}
		if sub, ok := r.s.d.subscriptions[p.SubscriptionID]; ok {
			p.Subscription = r.s.withPlan(sub)
		}
		payments = append(payments, p)
	}
	sortNewest(r.s.d.order, payments, func(p dbm.Payment) (int64, uuid.UUID) { return p.PaymentDate, p.ID })
	return payments, nil
}

type eventRepo struct{ s *Store }

func (r eventRepo) Create(_ context.Context, event *dbm.WebhookEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.CreateEvent != nil {
		return r.s.Fail.CreateEvent
	}
	r.s.stamp(&event.BaseModel)
	r.s.d.events[event.ID] = *event
	return nil
}

func (r eventRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Fail.MarkProcessed != nil {
		return r.s.Fail.MarkProcessed
	}
	if e, ok := r.s.d.events[id]; ok {
		e.Processed = true
		r.s.d.events[id] = e
	}
	return nil
}
