package response_models

import "github.com/google/uuid"

type PlanResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	MonthlyPrice string    `json:"monthly_price"` // "1.00"
	YearlyPrice  string    `json:"yearly_price"`
	Features     []string  `json:"features"`
	TrialDays    int32     `json:"trial_days"`
}
