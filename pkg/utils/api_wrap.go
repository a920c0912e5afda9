package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string            `json:"status"`
	Code    int               `json:"code"`
	Message string            `json:"message,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

func respondFields(c *gin.Context, code int, message string, fields map[string]string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Errors:  fields,
	})
}

// RespondBindError reports a request binding failure, with one entry per
// offending field when the validator produced them.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		respondFields(c, http.StatusBadRequest, "Invalid request payload", fields)
		return
	}
	RespondError(c, http.StatusBadRequest, "Invalid request payload")
}

func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	var fieldErr *FieldError

	switch {
	case errors.As(err, &fieldErr):
		respondFields(c, http.StatusBadRequest, "Validation failed",
			map[string]string{fieldErr.Field: fieldErr.Message})
	case errors.Is(err, ErrRenewNotAllowed):
		RespondError(c, http.StatusBadRequest, "Only cancelled subscriptions can be renewed")
	case errors.Is(err, ErrInvalidTransition):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrValidation):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPlanNotFound):
		RespondError(c, http.StatusNotFound, "Plan not found")
	case errors.Is(err, ErrSubscriptionNotFound):
		RespondError(c, http.StatusNotFound, "Subscription not found")
	case errors.Is(err, ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrGatewayError):
		log.Error("gateway error", zap.Error(err), zap.String("trace_id", c.GetString("trace_id")))
		RespondError(c, http.StatusInternalServerError, "Failed to create payment order")
	case errors.Is(err, ErrDatabaseError):
		log.Error("database error", zap.Error(err), zap.String("trace_id", c.GetString("trace_id")))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error("unknown error", zap.Error(err), zap.String("trace_id", c.GetString("trace_id")))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
