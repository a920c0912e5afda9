package response_models

import "github.com/google/uuid"

type SubscriptionResponse struct {
	ID         uuid.UUID    `json:"id"`
	Plan       PlanResponse `json:"plan"`
	Status     string       `json:"status"`
	IsYearly   bool         `json:"is_yearly"`
	Amount     string       `json:"amount"`
	StartDate  string       `json:"start_date"`
	EndDate    string       `json:"end_date"`
	CancelDate *string      `json:"cancel_date"`
	CreatedAt  string       `json:"created_at"`
}

type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CheckoutSession is everything the client needs to open the provider's
// checkout widget.
type CheckoutSession struct {
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	RazorpayOrderID string    `json:"razorpay_order_id"`
	RazorpayKeyID   string    `json:"razorpay_key_id"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Prefill         Prefill   `json:"prefill"`
}

type SimulatedPaymentResponse struct {
	Status    string    `json:"status"`
	PaymentID uuid.UUID `json:"payment_id"`
}
