package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"subscribely/internal/services"
	"subscribely/pkg/middleware"
	"subscribely/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentService
	log            *zap.Logger
}

func NewPaymentController(paymentService services.PaymentService, log *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		log:            log,
	}
}

// ListPayments godoc
// @Summary List the caller's payments
// @Description Payments of the authenticated user, newest first
// @Tags Payments
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments [get]
func (p *PaymentController) ListPayments(c *gin.Context) {

	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	payments, err := p.paymentService.ListPayments(c.Request.Context(), identity.UserID)
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}

	utils.RespondSuccess(c, payments, "Fetched payments successfully")
}
