package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/proration"
	"github.com/psaworks/psa/internal/types"
)

// ProrationService scales a plan's fixed charges by the share of the billing
// cycle the plan was active for
type ProrationService interface {
	CalculateProration(ctx context.Context, params proration.Params) (*proration.Factor, error)
	// ApplyProration prorates the fixed charges and returns every other
	// charge unchanged
	ApplyProration(ctx context.Context, charges []*billing.Charge, period types.BillingPeriod, planStart time.Time, cycle types.BillingCycle) ([]*billing.Charge, error)
}

type prorationService struct {
	serviceParams ServiceParams
}

// NewProrationService creates a new proration service.
func NewProrationService(serviceParams ServiceParams) ProrationService {
	return &prorationService{serviceParams: serviceParams}
}

// CalculateProration delegates to the underlying calculator.
func (s *prorationService) CalculateProration(ctx context.Context, params proration.Params) (*proration.Factor, error) {
	factor, err := s.serviceParams.ProrationCalculator.Factor(params)
	if err != nil {
		return nil, err
	}

	s.serviceParams.Logger.Debugw("calculated proration factor",
		zap.String("billing_run_id", types.GetBillingRunID(ctx)),
		zap.String("billing_cycle", params.BillingCycle.String()),
		zap.Time("effective_start", factor.EffectiveStart),
		zap.Int("actual_days", factor.ActualDays),
		zap.Int("cycle_days", factor.CycleDays),
		zap.String("factor", factor.Value.String()),
	)
	return factor, nil
}

func (s *prorationService) ApplyProration(ctx context.Context, charges []*billing.Charge, period types.BillingPeriod, planStart time.Time, cycle types.BillingCycle) ([]*billing.Charge, error) {
	factor, err := s.CalculateProration(ctx, proration.Params{
		Period:       period,
		PlanStart:    planStart,
		BillingCycle: cycle,
	})
	if err != nil {
		return nil, err
	}

	prorated := s.serviceParams.ProrationCalculator.Apply(charges, factor)

	s.serviceParams.Logger.Debugw("applied proration to fixed charges",
		zap.String("before", billing.SumTotals(charges).String()),
		zap.String("after", billing.SumTotals(prorated).String()),
	)
	return prorated, nil
}
