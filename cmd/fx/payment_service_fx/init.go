package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"subscribely/internal/config"
	"subscribely/internal/repositories"
	"subscribely/internal/services"
)

var Module = fx.Provide(
	provideOrderGateway, providePaymentService,
)

func provideOrderGateway(cfg config.Config, log *zap.Logger) (services.OrderGateway, error) {
	return services.NewRazorpayGateway(services.RazorpayConfig{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		Timeout:   cfg.GatewayTimeout,
	}, log)
}

func providePaymentService(payments repositories.PaymentRepository) services.PaymentService {
	return services.NewPaymentService(payments)
}
