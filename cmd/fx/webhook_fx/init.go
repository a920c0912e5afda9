package webhook_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"subscribely/internal/config"
	"subscribely/internal/repositories"
	"subscribely/internal/services"
	mem "subscribely/pkg/memcache"
)

var Module = fx.Provide(provideWebhookService)

func provideWebhookService(store repositories.Store, ledger services.SubscriptionLedger, claims mem.DeliveryStore,
	cfg config.Config, log *zap.Logger) services.WebhookServiceInterface {

	return services.NewWebhookService(store, ledger, claims, services.WebhookConfig{
		Secret:   cfg.RazorpayWebhookSecret,
		DedupTTL: cfg.WebhookDedupTTL,
	}, log)
}
