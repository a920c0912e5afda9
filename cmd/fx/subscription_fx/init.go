package subscription_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"subscribely/internal/config"
	"subscribely/internal/repositories"
	"subscribely/internal/services"
	"subscribely/pkg/middleware"
	"subscribely/pkg/utils"
)

var Module = fx.Provide(
	provideLedger,
	provideSubscriptionService,
	provideSubscriptionServiceInterface,
	provideActiveSubscriptionChecker,
)

func provideLedger() services.SubscriptionLedger {
	return services.NewSubscriptionLedger(utils.SystemClock)
}

func provideSubscriptionService(store repositories.Store, gateway services.OrderGateway,
	ledger services.SubscriptionLedger, cfg config.Config, log *zap.Logger) *services.SubscriptionService {

	return services.NewSubscriptionService(store, gateway, ledger, services.CheckoutConfig{
		AppName:  cfg.AppName,
		Currency: cfg.Currency,
	}, log)
}

func provideSubscriptionServiceInterface(s *services.SubscriptionService) services.SubscriptionServiceInterface {
	return s
}

func provideActiveSubscriptionChecker(s *services.SubscriptionService) middleware.ActiveSubscriptionChecker {
	return s
}
