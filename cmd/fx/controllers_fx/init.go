package controllers_fx

import (
	"go.uber.org/fx"
	"subscribely/internal/api/controllers"
	"subscribely/internal/config"
)

var Module = fx.Options(
	fx.Provide(controllers.NewPlanController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewWebhookController),
	fx.Provide(fx.Annotate(devEndpoints, fx.ResultTags(`name:"dev_endpoints"`))),
)

func devEndpoints(cfg config.Config) bool {
	return cfg.EnableDevEndpoints
}
