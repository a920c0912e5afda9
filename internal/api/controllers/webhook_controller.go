package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"subscribely/internal/services"
	"subscribely/pkg/utils"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	maxWebhookBody  = 1 << 20
)

type WebhookController struct {
	webhookService services.WebhookServiceInterface
	log            *zap.Logger
}

func NewWebhookController(webhookService services.WebhookServiceInterface, log *zap.Logger) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		log:            log,
	}
}

// HandleWebhook godoc
// @Summary Payment provider webhook
// @Description Verifies X-Razorpay-Signature over the raw body and applies payment.captured / payment.failed
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-Razorpay-Signature header string true "HMAC-SHA256 of the body"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /webhooks/gateway [post]
func (w *WebhookController) HandleWebhook(c *gin.Context) {
	// the signature covers these exact bytes, so the body is never re-encoded
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}
	if len(body) > maxWebhookBody {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return
	}

	_, err = w.webhookService.HandleWebhook(c.Request.Context(), body, c.GetHeader(signatureHeader))
	if err != nil {
		var fieldErr *utils.FieldError

		switch {
		case errors.Is(err, utils.ErrMissingSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature header"})
		case errors.Is(err, utils.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		case errors.As(err, &fieldErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error()})
		case errors.Is(err, utils.ErrInvalidPayload), errors.Is(err, utils.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			w.log.Error("webhook processing failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
