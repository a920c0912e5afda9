package plan_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"subscribely/internal/repositories"
	"subscribely/internal/services"
)

var Module = fx.Provide(providePlanService)

func providePlanService(planRepo repositories.IPlanRepository, log *zap.Logger) services.PlanServiceInterface {
	return services.NewPlanService(planRepo, log)
}
