package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"subscribely/internal/services"
	"subscribely/pkg/utils"
)

type PlanController struct {
	planService services.PlanServiceInterface
	log         *zap.Logger
}

func NewPlanController(planService services.PlanServiceInterface, log *zap.Logger) *PlanController {
	return &PlanController{
		planService: planService,
		log:         log,
	}
}

// ListPlans godoc
// @Summary List subscription plans
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /plans [get]
func (pc *PlanController) ListPlans(c *gin.Context) {
	plans, err := pc.planService.GetPlans(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, pc.log, err)
		return
	}

	utils.RespondSuccess(c, plans, "Fetched plans successfully")
}

// GetPlan godoc
// @Summary Get a plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /plans/{id} [get]
func (pc *PlanController) GetPlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid plan id")
		return
	}

	plan, err := pc.planService.GetPlanInfoById(c.Request.Context(), planID)
	if err != nil {
		utils.HandleServiceError(c, pc.log, err)
		return
	}

	utils.RespondSuccess(c, plan, "Fetched plan successfully")
}
