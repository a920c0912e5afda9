package request_models

import "github.com/google/uuid"

type SubscribeRequest struct {
	PlanID   uuid.UUID `json:"plan_id" binding:"required"`
	IsYearly bool      `json:"is_yearly"`
}
