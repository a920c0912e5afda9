package request_models

import "encoding/json"

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// WebhookEnvelope is the outer shape of every provider callback. Only the
// fields this system acts on are typed.
type WebhookEnvelope struct {
	Event   string          `json:"event"`
	Payload *WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Payment *WebhookPaymentWrapper `json:"payment"`
}

type WebhookPaymentWrapper struct {
	// Entity is kept raw so it can be stored verbatim on the payment row.
	Entity json.RawMessage `json:"entity"`
}

// PaymentEntity is payload.payment.entity of payment.* events.
type PaymentEntity struct {
	ID      *string `json:"id" validate:"required,min=1"`
	OrderID *string `json:"order_id" validate:"required,min=1"`
	Amount  *int64  `json:"amount" validate:"required,gte=0"` // minor units
	Method  string  `json:"method"`
}

func (e WebhookEnvelope) EventType() string {
	if e.Event == "" {
		return "unknown"
	}
	return e.Event
}

// PaymentEntityRaw returns payload.payment.entity, or nil when any level is absent.
func (e WebhookEnvelope) PaymentEntityRaw() json.RawMessage {
	if e.Payload == nil || e.Payload.Payment == nil {
		return nil
	}
	return e.Payload.Payment.Entity
}
