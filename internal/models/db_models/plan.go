package db_models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Plan struct {
	BaseModel
	Name         string          `gorm:"uniqueIndex;size:100;not null"`
	MonthlyPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	YearlyPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	// Ordered list of marketing feature strings.
	Features  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	TrialDays int32                       `gorm:"default:0;check:trial_days >= 0"`
}

// PriceFor returns the price tier selected by the billing cycle.
func (p Plan) PriceFor(isYearly bool) decimal.Decimal {
	if isYearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}
