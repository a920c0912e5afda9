package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	dbm "subscribely/internal/models/db_models"
	"subscribely/internal/models/response_models"
	"subscribely/internal/repositories"
	"subscribely/pkg/utils"
)

type PlanServiceInterface interface {
	GetPlans(ctx context.Context) ([]response_models.PlanResponse, error)
	GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.PlanResponse, error)
	SeedPlans(ctx context.Context, seeds []PlanSeed) ([]SeedResult, error)
}

func NewPlanService(planRepo repositories.IPlanRepository, log *zap.Logger) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
		log:      log,
	}
}

type PlanService struct {
	planRepo repositories.IPlanRepository
	log      *zap.Logger
}

func (p *PlanService) GetPlans(ctx context.Context) ([]response_models.PlanResponse, error) {
	plans, err := p.planRepo.GetAllPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list plans: %v", utils.ErrDatabaseError, err)
	}

	result := make([]response_models.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		result = append(result, response_models.NewPlanResponse(plan))
	}
	return result, nil
}

func (p *PlanService) GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.PlanResponse, error) {

	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.PlanResponse{}, fmt.Errorf("%w: get plan: %v", utils.ErrDatabaseError, err)
	}

	if plan == nil {
		return response_models.PlanResponse{}, utils.ErrPlanNotFound
	}

	return response_models.NewPlanResponse(*plan), nil
}

type PlanSeed struct {
	Name         string
	MonthlyPrice decimal.Decimal
	YearlyPrice  decimal.Decimal
	Features     []string
	TrialDays    int32
}

type SeedResult struct {
	Name    string
	Created bool
	Updated bool
}

// DefaultPlans is the catalog shipped with the product.
func DefaultPlans() []PlanSeed {
	return []PlanSeed{
		{
			Name:         "Basic",
			MonthlyPrice: decimal.RequireFromString("1.00"),
			YearlyPrice:  decimal.RequireFromString("10.00"),
			Features:     []string{"Basic support", "Up to 3 projects"},
			TrialDays:    7,
		},
		{
			Name:         "Pro",
			MonthlyPrice: decimal.RequireFromString("2.00"),
			YearlyPrice:  decimal.RequireFromString("20.00"),
			Features:     []string{"Priority support", "Unlimited projects", "Advanced analytics"},
			TrialDays:    14,
		},
		{
			Name:         "Pro Plus",
			MonthlyPrice: decimal.RequireFromString("3.00"),
			YearlyPrice:  decimal.RequireFromString("30.00"),
			Features:     []string{"All Pro features", "Dedicated account manager", "SLAs"},
			TrialDays:    30,
		},
	}
}

// SeedPlans creates missing plans by name and corrects prices of existing
// ones. Features and trial length of an existing plan are left alone.
func (p *PlanService) SeedPlans(ctx context.Context, seeds []PlanSeed) ([]SeedResult, error) {
	results := make([]SeedResult, 0, len(seeds))

	for _, seed := range seeds {
		if seed.TrialDays < 0 {
			return results, utils.NewFieldError("trial_days", "must be non-negative")
		}
		if seed.MonthlyPrice.IsNegative() || seed.YearlyPrice.IsNegative() {
			return results, utils.NewFieldError("price", "must be non-negative")
		}

		existing, err := p.planRepo.GetPlanByName(ctx, seed.Name)
		if err != nil {
			return results, fmt.Errorf("%w: find plan %q: %v", utils.ErrDatabaseError, seed.Name, err)
		}

		if existing == nil {
			plan := &dbm.Plan{
				Name:         seed.Name,
				MonthlyPrice: seed.MonthlyPrice,
				YearlyPrice:  seed.YearlyPrice,
				Features:     seed.Features,
				TrialDays:    seed.TrialDays,
			}
			if err := p.planRepo.Create(ctx, plan); err != nil {
				return results, fmt.Errorf("%w: create plan %q: %v", utils.ErrDatabaseError, seed.Name, err)
			}
			results = append(results, SeedResult{Name: seed.Name, Created: true})
			continue
		}

		if existing.MonthlyPrice.Equal(seed.MonthlyPrice) && existing.YearlyPrice.Equal(seed.YearlyPrice) {
			results = append(results, SeedResult{Name: seed.Name})
			continue
		}

		existing.MonthlyPrice = seed.MonthlyPrice
		existing.YearlyPrice = seed.YearlyPrice
		if err := p.planRepo.UpdatePrices(ctx, existing); err != nil {
			return results, fmt.Errorf("%w: update plan %q: %v", utils.ErrDatabaseError, seed.Name, err)
		}
		p.log.Info("plan prices corrected",
			zap.String("plan", seed.Name),
			zap.String("monthly", seed.MonthlyPrice.StringFixed(2)),
			zap.String("yearly", seed.YearlyPrice.StringFixed(2)))
		results = append(results, SeedResult{Name: seed.Name, Updated: true})
	}

	return results, nil
}
