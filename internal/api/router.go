package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"subscribely/internal/api/controllers"
	"subscribely/pkg/logger"
	"subscribely/pkg/middleware"
	"subscribely/pkg/utils"
)

type RouterParams struct {
	fx.In

	Plans         *controllers.PlanController
	Subscriptions *controllers.SubscriptionController
	Payments      *controllers.PaymentController
	Webhooks      *controllers.WebhookController

	Auth    utils.TokenAuthenticator
	Checker middleware.ActiveSubscriptionChecker
	Log     *zap.Logger

	DevEndpoints bool `name:"dev_endpoints"`
}

func NewRouter(p RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(logger.GinMiddleware(p.Log))
	r.Use(gin.Recovery())

	RegisterRoutes(r, p)

	return r
}

func RegisterRoutes(r *gin.Engine, p RouterParams) {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")

	plansGroup := apiGroup.Group("/plans")
	plansGroup.GET("", p.Plans.ListPlans)
	plansGroup.GET("/:id", p.Plans.GetPlan)

	authed := middleware.JWTAuthMiddleware(p.Auth)

	subsGroup := apiGroup.Group("/subscriptions", authed)
	subsGroup.GET("", p.Subscriptions.ListSubscriptions)
	subsGroup.POST("/subscribe", p.Subscriptions.Subscribe)
	subsGroup.GET("/subscriber-only", middleware.ActiveSubscriberMiddleware(p.Checker), p.Subscriptions.SubscriberOnly)
	subsGroup.POST("/:id/cancel", p.Subscriptions.Cancel)
	subsGroup.POST("/:id/renew", p.Subscriptions.Renew)
	if p.DevEndpoints {
		subsGroup.POST("/:id/simulate-payment", p.Subscriptions.SimulatePayment)
	}

	apiGroup.POST("/checkout/create-session", authed, p.Subscriptions.Subscribe)

	apiGroup.GET("/payments", authed, p.Payments.ListPayments)

	// authenticated by signature, not bearer token
	apiGroup.POST("/webhooks/gateway", p.Webhooks.HandleWebhook)
}
