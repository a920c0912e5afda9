package response_models

import (
	"subscribely/internal/models/db_models"
	"subscribely/pkg/utils"
)

func NewPlanResponse(p db_models.Plan) PlanResponse {
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	return PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		MonthlyPrice: p.MonthlyPrice.StringFixed(2),
		YearlyPrice:  p.YearlyPrice.StringFixed(2),
		Features:     features,
		TrialDays:    p.TrialDays,
	}
}

func NewSubscriptionResponse(s db_models.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:         s.ID,
		Plan:       NewPlanResponse(s.Plan),
		Status:     string(s.Status),
		IsYearly:   s.IsYearly,
		Amount:     s.Amount.StringFixed(2),
		StartDate:  utils.FormatUnixRFC3339(s.StartDate),
		EndDate:    utils.FormatUnixRFC3339(s.EndDate),
		CancelDate: utils.FormatUnixPtr(s.CancelDate),
		CreatedAt:  utils.FormatUnixRFC3339(s.CreatedAt),
	}
}

func NewPaymentResponse(p db_models.Payment) PaymentResponse {
	var plan *string
	if p.Subscription.Plan.Name != "" {
		name := p.Subscription.Plan.Name
		plan = &name
	}
	return PaymentResponse{
		ID:                p.ID,
		Amount:            p.Amount.StringFixed(2),
		Method:            string(p.Method),
		Status:            string(p.Status),
		RazorpayPaymentID: p.ProviderPaymentID,
		PaymentDate:       utils.FormatUnixRFC3339(p.PaymentDate),
		Plan:              plan,
		SubscriptionID:    p.SubscriptionID,
	}
}
