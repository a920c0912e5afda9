package response_models

import "github.com/google/uuid"

type PaymentResponse struct {
	ID                uuid.UUID `json:"id"`
	Amount            string    `json:"amount"`
	Method            string    `json:"method"`
	Status            string    `json:"status"`
	RazorpayPaymentID *string   `json:"razorpay_payment_id"`
	PaymentDate       string    `json:"payment_date"`
	Plan              *string   `json:"plan"`
	SubscriptionID    uuid.UUID `json:"subscription_id"`
}
