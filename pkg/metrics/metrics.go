package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscribely_webhook_events_total",
		Help: "Inbound provider webhooks by event type and outcome",
	}, []string{
		"event_type",
		"outcome", // rejected, processed, unmatched, duplicate, ignored, error
	})

	gatewayOrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscribely_gateway_orders_total",
		Help: "Provider order creation attempts",
	}, []string{
		"status", // created, failed
	})

	subscriptionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscribely_subscription_transitions_total",
		Help: "Applied subscription status transitions",
	}, []string{"from", "to"})
)

func RecordWebhook(eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func RecordGatewayOrder(status string) {
	gatewayOrdersTotal.WithLabelValues(status).Inc()
}

func RecordTransition(from, to string) {
	subscriptionTransitionsTotal.WithLabelValues(from, to).Inc()
}
