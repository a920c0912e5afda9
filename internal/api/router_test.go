package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"subscribely/internal/api/controllers"
	dbm "subscribely/internal/models/db_models"
	"subscribely/internal/services"
	"subscribely/internal/testutil/memstore"
	mem "subscribely/pkg/memcache"
	"subscribely/pkg/utils"
)

const (
	jwtSecret     = "jwt-test-secret"
	webhookSecret = "whsec_test"
)

type stubGateway struct {
	orderID string
	err     error
	calls   int
}

func (g *stubGateway) CreateOrder(_ context.Context, req services.OrderRequest) (services.Order, error) {
	g.calls++
	if g.err != nil {
		return services.Order{}, g.err
	}
	return services.Order{ID: g.orderID, Currency: req.Currency}, nil
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

type harness struct {
	router  *gin.Engine
	store   *memstore.Store
	gateway *stubGateway
	basic   dbm.Plan
	user    utils.Identity
	token   string
}

func newHarness(t *testing.T, devEndpoints bool) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	store := memstore.New()
	gateway := &stubGateway{orderID: "order_http_1"}
	ledger := services.NewSubscriptionLedger(nil)
	subs := services.NewSubscriptionService(store, gateway, ledger,
		services.CheckoutConfig{AppName: "Subscribely", Currency: "INR"}, log)
	webhooks := services.NewWebhookService(store, ledger, mem.NewDeliveryClaims(),
		services.WebhookConfig{Secret: webhookSecret}, log)
	auth := utils.NewHMACTokenAuthenticator(jwtSecret)

	router := NewRouter(RouterParams{
		Plans:         controllers.NewPlanController(services.NewPlanService(store.Plans(), log), log),
		Subscriptions: controllers.NewSubscriptionController(subs, log),
		Payments:      controllers.NewPaymentController(services.NewPaymentService(store.Payments()), log),
		Webhooks:      controllers.NewWebhookController(webhooks, log),
		Auth:          auth,
		Checker:       subs,
		Log:           log,
		DevEndpoints:  devEndpoints,
	})

	user := utils.Identity{UserID: uuid.New(), Email: "asha@example.com", Name: "Asha Rao"}
	token, err := auth.CreateToken(user, time.Hour)
	require.NoError(t, err)

	basic := store.AddPlan(dbm.Plan{
		Name:         "Basic",
		MonthlyPrice: decimal.RequireFromString("1.00"),
		YearlyPrice:  decimal.RequireFromString("10.00"),
		Features:     []string{"Basic support"},
		TrialDays:    7,
	})

	return &harness{router: router, store: store, gateway: gateway, basic: basic, user: user, token: token}
}

func (h *harness) do(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) authed(method, path string, body []byte) *httptest.ResponseRecorder {
	return h.do(method, path, body, map[string]string{"Authorization": "Bearer " + h.token})
}

type envelope struct {
	Status  string            `json:"status"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	TraceID string            `json:"trace_id"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, false)
	w := h.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListPlans(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(http.MethodGet, "/api/plans", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, env.TraceID)

	var plans []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, "Basic", plans[0]["name"])
	assert.Equal(t, "1.00", plans[0]["monthly_price"])
	assert.Equal(t, "10.00", plans[0]["yearly_price"])
}

func TestGetPlan(t *testing.T) {
	h := newHarness(t, false)

	w := h.do(http.MethodGet, "/api/plans/"+h.basic.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/plans/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plan not found", decode(t, w).Message)

	w = h.do(http.MethodGet, "/api/plans/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionRoutesRequireToken(t *testing.T) {
	h := newHarness(t, false)

	for _, path := range []string{"/api/subscriptions", "/api/payments", "/api/subscriptions/subscriber-only"} {
		w := h.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := h.do(http.MethodGet, "/api/subscriptions", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubscribe(t *testing.T) {
	h := newHarness(t, false)

	body := []byte(fmt.Sprintf(`{"plan_id":%q}`, h.basic.ID))
	w := h.authed(http.MethodPost, "/api/subscriptions/subscribe", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &session))
	assert.Equal(t, "order_http_1", session["razorpay_order_id"])
	assert.Equal(t, "rzp_test_key", session["razorpay_key_id"])
	assert.Equal(t, "1.00", session["amount"])
	assert.Equal(t, "INR", session["currency"])
	assert.Equal(t, "Basic Plan Subscription", session["description"])
	assert.Equal(t, map[string]interface{}{"name": "Asha Rao", "email": "asha@example.com"}, session["prefill"])

	require.Len(t, h.store.AllSubscriptions(), 1)
	assert.Equal(t, dbm.SubStatusPending, h.store.AllSubscriptions()[0].Status)
}

func TestCheckoutAlias(t *testing.T) {
	h := newHarness(t, false)

	body := []byte(fmt.Sprintf(`{"plan_id":%q,"is_yearly":true}`, h.basic.ID))
	w := h.authed(http.MethodPost, "/api/checkout/create-session", body)
	require.Equal(t, http.StatusOK, w.Code)

	var session map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &session))
	assert.Equal(t, "10.00", session["amount"])
}

func TestSubscribeValidation(t *testing.T) {
	h := newHarness(t, false)

	w := h.authed(http.MethodPost, "/api/subscriptions/subscribe", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Errors, "PlanID")

	w = h.authed(http.MethodPost, "/api/subscriptions/subscribe", []byte(`{"plan_id":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.authed(http.MethodPost, "/api/subscriptions/subscribe", []byte(fmt.Sprintf(`{"plan_id":%q}`, uuid.New())))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, h.gateway.calls)
}

func TestSubscribeGatewayFailure(t *testing.T) {
	h := newHarness(t, false)
	h.gateway.err = fmt.Errorf("%w: timeout", utils.ErrGatewayError)

	w := h.authed(http.MethodPost, "/api/subscriptions/subscribe", []byte(fmt.Sprintf(`{"plan_id":%q}`, h.basic.ID)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to create payment order", decode(t, w).Message)
	assert.Empty(t, h.store.AllSubscriptions())
}

func TestCancelAndRenew(t *testing.T) {
	h := newHarness(t, false)
	sub := h.store.AddSubscription(dbm.Subscription{
		UserID: h.user.UserID, PlanID: h.basic.ID, Status: dbm.SubStatusActive,
		Amount: h.basic.MonthlyPrice, StartDate: 1, EndDate: 2,
	})
	base := "/api/subscriptions/" + sub.ID.String()

	w := h.authed(http.MethodPost, base+"/renew", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only cancelled subscriptions can be renewed", decode(t, w).Message)

	w = h.authed(http.MethodPost, base+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &cancelled))
	assert.Equal(t, "cancelled", cancelled["status"])
	assert.NotNil(t, cancelled["cancel_date"])

	w = h.authed(http.MethodPost, base+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.authed(http.MethodPost, base+"/renew", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var renewed map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &renewed))
	assert.Equal(t, "active", renewed["status"])
	assert.Nil(t, renewed["cancel_date"])

	w = h.authed(http.MethodPost, "/api/subscriptions/"+uuid.NewString()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.authed(http.MethodPost, "/api/subscriptions/nope/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulatePaymentRouteIsDevOnly(t *testing.T) {
	h := newHarness(t, false)
	sub := h.store.AddSubscription(dbm.Subscription{UserID: h.user.UserID, PlanID: h.basic.ID, Status: dbm.SubStatusPending})

	w := h.authed(http.MethodPost, "/api/subscriptions/"+sub.ID.String()+"/simulate-payment", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, h.store.AllPayments())
}

func TestSubscriberOnlyGate(t *testing.T) {
	h := newHarness(t, true)
	sub := h.store.AddSubscription(dbm.Subscription{
		UserID: h.user.UserID, PlanID: h.basic.ID, Status: dbm.SubStatusPending, Amount: h.basic.MonthlyPrice,
	})

	w := h.authed(http.MethodGet, "/api/subscriptions/subscriber-only", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.authed(http.MethodPost, "/api/subscriptions/"+sub.ID.String()+"/simulate-payment", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.authed(http.MethodGet, "/api/subscriptions/subscriber-only", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.authed(http.MethodGet, "/api/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var payments []map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "Basic", payments[0]["plan"])
	assert.Equal(t, "1.00", payments[0]["amount"])
}

func capturedBody(orderID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_http_1","order_id":%q,"amount":100,"method":"upi"}}}}`,
		orderID))
}

func TestWebhookResponses(t *testing.T) {
	h := newHarness(t, false)
	orderID := "order_wh_1"
	h.store.AddSubscription(dbm.Subscription{
		UserID: h.user.UserID, PlanID: h.basic.ID, Status: dbm.SubStatusPending, ProviderOrderID: &orderID,
	})
	body := capturedBody(orderID)

	w := h.do(http.MethodPost, "/api/webhooks/gateway", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing signature header"}`, w.Body.String())

	w = h.do(http.MethodPost, "/api/webhooks/gateway", body,
		map[string]string{"X-Razorpay-Signature": utils.SignWebhookBody(body, "wrong")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid signature"}`, w.Body.String())
	assert.Empty(t, h.store.AllWebhookEvents())

	sign := map[string]string{"X-Razorpay-Signature": utils.SignWebhookBody(body, webhookSecret)}
	w = h.do(http.MethodPost, "/api/webhooks/gateway", body, sign)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())

	// redelivery is acknowledged and books nothing new
	w = h.do(http.MethodPost, "/api/webhooks/gateway", body, sign)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, h.store.AllPayments(), 1)

	ok, err := services.NewSubscriptionService(h.store, h.gateway, services.NewSubscriptionLedger(nil),
		services.CheckoutConfig{}, zap.NewNop()).HasActiveSubscription(context.Background(), h.user)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWebhookUnmatchedIsAcknowledged(t *testing.T) {
	h := newHarness(t, false)
	body := capturedBody("order_nobody")

	w := h.do(http.MethodPost, "/api/webhooks/gateway", body,
		map[string]string{"X-Razorpay-Signature": utils.SignWebhookBody(body, webhookSecret)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	assert.Empty(t, h.store.AllPayments())
}

func TestWebhookBadPayloads(t *testing.T) {
	h := newHarness(t, false)

	for _, body := range [][]byte{
		[]byte(`not json`),
		[]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"o","amount":1}}}}`),
	} {
		w := h.do(http.MethodPost, "/api/webhooks/gateway", body,
			map[string]string{"X-Razorpay-Signature": utils.SignWebhookBody(body, webhookSecret)})
		assert.Equal(t, http.StatusBadRequest, w.Code, string(body))

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["error"])
		assert.Len(t, resp, 1)
	}
}

func TestWebhookStorageFailureIsBadRequest(t *testing.T) {
	h := newHarness(t, false)
	h.store.Fail.CreateEvent = fmt.Errorf("connection refused")
	body := capturedBody("order_x")

	w := h.do(http.MethodPost, "/api/webhooks/gateway", body,
		map[string]string{"X-Razorpay-Signature": utils.SignWebhookBody(body, webhookSecret)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "connection refused")
}

func TestWebhookOversizedBody(t *testing.T) {
	h := newHarness(t, false)
	body := append([]byte(`{"event":"payment.captured","pad":"`), bytes.Repeat([]byte("a"), 1<<20)...)
	body = append(body, []byte(`"}`)...)

	w := h.do(http.MethodPost, "/api/webhooks/gateway", body,
		map[string]string{"X-Razorpay-Signature": utils.SignWebhookBody(body, webhookSecret)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, h.store.AllWebhookEvents())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, false)
	w := h.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
