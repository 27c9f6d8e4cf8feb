package service

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/company"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/metrics"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// BillingService runs billing for a company over a date window
type BillingService interface {
	// CalculateBilling resolves the company's active plans, computes every
	// charge, prorates the fixed ones and applies discounts. Any failure
	// aborts the run, no partial result is returned.
	CalculateBilling(ctx context.Context, companyID string, start, end time.Time) (*billing.Result, error)
}

type billingService struct {
	ServiceParams
	planResolver     PlanResolver
	calculators      []ChargeCalculator
	prorationService ProrationService
	discountEngine   *DiscountEngineService
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams:    params,
		planResolver:     NewPlanResolver(params),
		calculators:      NewChargeCalculators(params, NewTaxService(params)),
		prorationService: NewProrationService(params),
		discountEngine:   NewDiscountEngineService(params),
	}
}

func (s *billingService) CalculateBilling(ctx context.Context, companyID string, start, end time.Time) (*billing.Result, error) {
	period, err := types.NewBillingPeriod(start, end)
	if err != nil {
		return nil, err
	}

	runID := types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_BILLING_RUN)
	ctx = types.SetBillingRunID(ctx, runID)

	transaction, ctx := s.Sentry.StartTransaction(ctx, "billing.calculate")
	if transaction != nil {
		transaction.SetTag("company_id", companyID)
		defer transaction.Finish()
	}

	s.Logger.Infow("starting billing run",
		"billing_run_id", runID,
		"company_id", companyID,
		"period", period.String(),
	)

	startedAt := time.Now()
	var result *billing.Result
	err = s.Pyroscope.TagBillingRun(ctx, companyID, func(ctx context.Context) error {
		var err error
		result, err = s.calculate(ctx, companyID, period)
		return err
	})
	duration := time.Since(startedAt)

	if err != nil {
		if ierr.IsNoActivePlan(err) {
			metrics.ObserveBillingRun(metrics.ResultNoPlan, duration)
			s.Logger.Warnw("billing run rejected, no active plan",
				"billing_run_id", runID,
				"company_id", companyID,
			)
			return nil, err
		}

		metrics.ObserveBillingRun(metrics.ResultError, duration)
		s.Sentry.CaptureExceptionWithTags(ctx, err, map[string]string{
			"tenant_id":      types.GetTenantID(ctx),
			"company_id":     companyID,
			"billing_run_id": runID,
		})
		s.Logger.Errorw("billing run failed",
			"billing_run_id", runID,
			"company_id", companyID,
			"error", err,
		)
		return nil, err
	}

	metrics.ObserveBillingRun(metrics.ResultSuccess, duration)
	s.Logger.Infow("completed billing run",
		"billing_run_id", runID,
		"company_id", companyID,
		"charges", len(result.Charges),
		"total_amount", result.TotalAmount.String(),
		"discount_total", result.DiscountTotal.String(),
		"final_amount", result.FinalAmount.String(),
		"duration_ms", duration.Milliseconds(),
	)
	return result, nil
}

func (s *billingService) calculate(ctx context.Context, companyID string, period types.BillingPeriod) (*billing.Result, error) {
	var comp *company.Company
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		comp, err = s.CompanyRepo.Get(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resolved, err := s.planResolver.Resolve(ctx, companyID, period)
	if err != nil {
		return nil, err
	}

	charges := make([]*billing.Charge, 0)
	for _, plan := range resolved.Plans {
		span, spanCtx := s.Sentry.StartBillingSpan(ctx, "plan_charges", map[string]interface{}{
			"company_billing_plan_id": plan.ID,
		})
		planCharges, err := s.calculatePlanCharges(spanCtx, ChargeRequest{
			Company: comp,
			Plan:    plan,
			Period:  period,
		}, resolved.BillingCycle)
		if span != nil {
			span.Finish()
		}
		if err != nil {
			return nil, err
		}
		charges = append(charges, planCharges...)
	}

	for _, c := range charges {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	result := billing.NewResult(companyID, period, resolved.BillingCycle, charges)
	for _, t := range []types.ChargeType{types.ChargeTypeFixed, types.ChargeTypeTime, types.ChargeTypeUsage, types.ChargeTypeBucket} {
		metrics.AddCharges(string(t), len(result.ChargesOfType(t)))
	}

	return s.discountEngine.Apply(ctx, result, companyID, period)
}

// calculatePlanCharges fans the calculators out for one plan and joins them
// before proration. Calculators open their own transactions, so they run one
// at a time when the caller already holds one.
func (s *billingService) calculatePlanCharges(ctx context.Context, req ChargeRequest, cycle types.BillingCycle) ([]*billing.Charge, error) {
	concurrency := lo.Max([]int{s.Config.Billing.CalculatorConcurrency, 1})
	if _, ok := postgres.GetTx(ctx); ok {
		concurrency = 1
	}

	results := make([][]*billing.Charge, len(s.calculators))
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(concurrency)

	for i, calc := range s.calculators {
		p.Go(func(ctx context.Context) error {
			charges, err := calc.Calculate(ctx, req)
			if err != nil {
				s.Logger.Errorw("charge calculator failed",
					"billing_run_id", types.GetBillingRunID(ctx),
					"charge_type", calc.Type(),
					"company_billing_plan_id", req.Plan.ID,
					"error", err,
				)
				return err
			}
			results[i] = charges
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	charges := make([]*billing.Charge, 0)
	for i, calc := range s.calculators {
		if calc.Type() != types.ChargeTypeFixed {
			charges = append(charges, results[i]...)
			continue
		}
		prorated, err := s.prorationService.ApplyProration(ctx, results[i], req.Period, req.Plan.StartDate, cycle)
		if err != nil {
			return nil, err
		}
		charges = append(charges, prorated...)
	}

	s.Logger.Debugw("calculated plan charges",
		"billing_run_id", types.GetBillingRunID(ctx),
		"company_billing_plan_id", req.Plan.ID,
		"charges", len(charges),
		"total", billing.SumTotals(charges).String(),
	)
	return charges, nil
}
