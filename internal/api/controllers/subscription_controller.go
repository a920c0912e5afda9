package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"subscribely/internal/models/request_models"
	"subscribely/internal/services"
	"subscribely/pkg/middleware"
	"subscribely/pkg/utils"
)

type SubscriptionController struct {
	subscriptionService services.SubscriptionServiceInterface
	log                 *zap.Logger
}

func NewSubscriptionController(subscriptionService services.SubscriptionServiceInterface, log *zap.Logger) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// ListSubscriptions godoc
// @Summary List the caller's subscriptions
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions [get]
func (sc *SubscriptionController) ListSubscriptions(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	subs, err := sc.subscriptionService.ListSubscriptions(c.Request.Context(), identity.UserID)
	if err != nil {
		utils.HandleServiceError(c, sc.log, err)
		return
	}

	utils.RespondSuccess(c, subs, "Fetched subscriptions successfully")
}

// Subscribe godoc
// @Summary Subscribe to a plan
// @Description Creates a pending subscription and a provider order, and returns the checkout session
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body request_models.SubscribeRequest true "Subscribe Request"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/subscribe [post]
func (sc *SubscriptionController) Subscribe(c *gin.Context) {

	var request request_models.SubscribeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	session, err := sc.subscriptionService.SubscribeToPlan(c.Request.Context(), identity, request)
	if err != nil {
		utils.HandleServiceError(c, sc.log, err)
		return
	}

	utils.RespondSuccess(c, session, "Checkout session created successfully")
}

// Cancel godoc
// @Summary Cancel a subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/{id}/cancel [post]
func (sc *SubscriptionController) Cancel(c *gin.Context) {
	identity, subscriptionID, ok := sc.target(c)
	if !ok {
		return
	}

	sub, err := sc.subscriptionService.CancelSubscription(c.Request.Context(), identity.UserID, subscriptionID)
	if err != nil {
		utils.HandleServiceError(c, sc.log, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription cancelled successfully")
}

// Renew godoc
// @Summary Renew a cancelled subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/{id}/renew [post]
func (sc *SubscriptionController) Renew(c *gin.Context) {
	identity, subscriptionID, ok := sc.target(c)
	if !ok {
		return
	}

	sub, err := sc.subscriptionService.RenewSubscription(c.Request.Context(), identity.UserID, subscriptionID)
	if err != nil {
		utils.HandleServiceError(c, sc.log, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription renewed successfully")
}

// SimulatePayment godoc
// @Summary Record a successful payment without the provider (development only)
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/{id}/simulate-payment [post]
func (sc *SubscriptionController) SimulatePayment(c *gin.Context) {
	identity, subscriptionID, ok := sc.target(c)
	if !ok {
		return
	}

	result, err := sc.subscriptionService.SimulatePayment(c.Request.Context(), identity.UserID, subscriptionID)
	if err != nil {
		utils.HandleServiceError(c, sc.log, err)
		return
	}

	utils.RespondSuccess(c, result, "Payment simulated")
}

// SubscriberOnly godoc
// @Summary Content for active subscribers
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscriptions/subscriber-only [get]
func (sc *SubscriptionController) SubscriberOnly(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	utils.RespondSuccess(c, gin.H{"user_id": identity.UserID}, "Welcome, subscriber")
}

// target resolves the caller and the :id path parameter, responding on failure.
func (sc *SubscriptionController) target(c *gin.Context) (utils.Identity, uuid.UUID, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return utils.Identity{}, uuid.Nil, false
	}

	subscriptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid subscription id")
		return utils.Identity{}, uuid.Nil, false
	}

	return identity, subscriptionID, true
}
