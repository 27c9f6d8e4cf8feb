package service

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/cache"
	"github.com/psaworks/psa/internal/domain/billingplan"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

const billingCycleCacheTTL = 5 * time.Minute

// ResolvedPlans are the plan assignments and cadence a billing run works with
type ResolvedPlans struct {
	Plans        []*billingplan.CompanyBillingPlan
	BillingCycle types.BillingCycle
}

type PlanResolver interface {
	// Resolve returns every active assignment overlapping the period, failing
	// with ErrNoActivePlan when there is none
	Resolve(ctx context.Context, companyID string, period types.BillingPeriod) (*ResolvedPlans, error)
	// GetBillingCycle returns the company's cycle, or the configured default
	// when the company has none
	GetBillingCycle(ctx context.Context, companyID string) (types.BillingCycle, error)
}

type planResolver struct {
	ServiceParams
}

func NewPlanResolver(params ServiceParams) PlanResolver {
	return &planResolver{ServiceParams: params}
}

func (r *planResolver) Resolve(ctx context.Context, companyID string, period types.BillingPeriod) (*ResolvedPlans, error) {
	var plans []*billingplan.CompanyBillingPlan
	err := r.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		plans, err = r.BillingPlanRepo.ListActiveForPeriod(ctx, companyID, period)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(plans) == 0 {
		return nil, ierr.NewErrorf("no active billing plan for company %s", companyID).
			WithHintf("Company has no active billing plan between %s and %s",
				types.FormatTimestamp(period.Start), types.FormatTimestamp(period.End)).
			WithReportableDetails(map[string]any{
				"company_id": companyID,
				"start_date": types.FormatTimestamp(period.Start),
				"end_date":   types.FormatTimestamp(period.End),
			}).
			Mark(ierr.ErrNoActivePlan)
	}

	cycle, err := r.GetBillingCycle(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return &ResolvedPlans{Plans: plans, BillingCycle: cycle}, nil
}

func (r *planResolver) GetBillingCycle(ctx context.Context, companyID string) (types.BillingCycle, error) {
	key := cache.GenerateKey(cache.PrefixBillingCycle, types.GetTenantID(ctx), companyID)
	if cached, ok := r.Cache.Get(ctx, key); ok {
		if cycle, ok := cached.(types.BillingCycle); ok {
			return cycle, nil
		}
	}

	cycle := r.Config.Billing.DefaultBillingCycle
	err := r.DB.WithTx(ctx, func(ctx context.Context) error {
		record, err := r.BillingPlanRepo.GetBillingCycle(ctx, companyID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil
			}
			return err
		}
		if record.BillingCycle != "" {
			cycle = record.BillingCycle
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	r.Cache.Set(ctx, key, cycle, billingCycleCacheTTL)
	return cycle, nil
}
