package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"subscribely/pkg/metrics"
	"subscribely/pkg/utils"
)

type RazorpayConfig struct {
	KeyID     string        // public key, handed to the checkout widget
	KeySecret string        // API secret
	Timeout   time.Duration // upper bound on one create-order call
}

type OrderRequest struct {
	Amount   decimal.Decimal // major units, must be > 0
	Currency string
	Receipt  string // idempotency token derived from the subscription id
	Capture  bool
}

type Order struct {
	ID       string
	Amount   int64 // minor units, as echoed by the provider
	Currency string
}

// OrderGateway is the outbound side of the payment provider.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	KeyID() string
}

// orderCreator is the slice of the razorpay SDK the adapter needs.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type razorpayGateway struct {
	orders  orderCreator
	keyID   string
	timeout time.Duration
	log     *zap.Logger
}

func NewRazorpayGateway(cfg RazorpayConfig, log *zap.Logger) (OrderGateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("%w: missing razorpay credentials", utils.ErrGatewayError)
	}
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return newRazorpayGateway(client.Order, cfg, log), nil
}

func newRazorpayGateway(orders orderCreator, cfg RazorpayConfig, log *zap.Logger) *razorpayGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &razorpayGateway{
		orders:  orders,
		keyID:   cfg.KeyID,
		timeout: timeout,
		log:     log,
	}
}

func (g *razorpayGateway) KeyID() string { return g.keyID }

func (g *razorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if !req.Amount.IsPositive() {
		return Order{}, fmt.Errorf("%w: amount must be greater than zero, got %s", utils.ErrGatewayError, req.Amount)
	}
	if req.Currency == "" || req.Receipt == "" {
		return Order{}, fmt.Errorf("%w: currency and receipt are required", utils.ErrGatewayError)
	}
	minor, err := utils.ToMinorUnits(req.Amount)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", utils.ErrGatewayError, err)
	}

	capture := 0
	if req.Capture {
		capture = 1
	}
	body := map[string]interface{}{
		"amount":          minor,
		"currency":        strings.ToUpper(req.Currency),
		"receipt":         req.Receipt,
		"payment_capture": capture,
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		resp map[string]interface{}
		err  error
	}
	// The SDK has no context support; the call is abandoned on timeout.
	done := make(chan result, 1)
	go func() {
		resp, err := g.orders.Create(body, nil)
		done <- result{resp: resp, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		metrics.RecordGatewayOrder("failed")
		return Order{}, fmt.Errorf("%w: create order: %v", utils.ErrGatewayError, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		metrics.RecordGatewayOrder("failed")
		return Order{}, fmt.Errorf("%w: create order: %v", utils.ErrGatewayError, res.err)
	}

	id, _ := res.resp["id"].(string)
	if id == "" {
		metrics.RecordGatewayOrder("failed")
		return Order{}, fmt.Errorf("%w: create order: response has no order id", utils.ErrGatewayError)
	}

	order := Order{ID: id, Amount: minor, Currency: strings.ToUpper(req.Currency)}
	if amt, ok := res.resp["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := res.resp["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}

	metrics.RecordGatewayOrder("created")
	g.log.Info("provider order created",
		zap.String("order_id", order.ID),
		zap.String("receipt", req.Receipt),
		zap.Int64("amount_minor", order.Amount))

	return order, nil
}

// ReceiptFor derives the provider receipt from a subscription id. Razorpay
// caps receipts at 40 characters, so the uuid is written without dashes.
func ReceiptFor(subscriptionID uuid.UUID) string {
	return "sub_" + strings.ReplaceAll(subscriptionID.String(), "-", "")
}
