package service

import (
	"context"

	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/billingplan"
	"github.com/psaworks/psa/internal/domain/bucket"
	"github.com/psaworks/psa/internal/domain/company"
	"github.com/psaworks/psa/internal/domain/servicecatalog"
	"github.com/psaworks/psa/internal/domain/timeentry"
	"github.com/psaworks/psa/internal/domain/usage"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
)

// bucketFallbackServiceName names bucket charges whose service has no name
const bucketFallbackServiceName = "Bucket Plan Hours"

// ChargeRequest is the input shared by every charge calculator for one plan
type ChargeRequest struct {
	Company *company.Company
	Plan    *billingplan.CompanyBillingPlan
	Period  types.BillingPeriod
}

// ChargeCalculator computes the charges of one variant for a plan. An empty
// result is not an error.
type ChargeCalculator interface {
	Type() types.ChargeType
	Calculate(ctx context.Context, req ChargeRequest) ([]*billing.Charge, error)
}

// NewChargeCalculators returns the fixed, time, usage and bucket calculators
func NewChargeCalculators(params ServiceParams, taxService TaxService) []ChargeCalculator {
	return []ChargeCalculator{
		&fixedPriceCalculator{ServiceParams: params},
		&timeBasedCalculator{ServiceParams: params},
		&usageBasedCalculator{ServiceParams: params},
		&bucketCalculator{ServiceParams: params, taxService: taxService},
	}
}

// taxRegionOr returns region when set, fallback otherwise
func taxRegionOr(region *string, fallback string) string {
	if r := lo.FromPtr(region); r != "" {
		return r
	}
	return fallback
}

type fixedPriceCalculator struct {
	ServiceParams
}

func (c *fixedPriceCalculator) Type() types.ChargeType {
	return types.ChargeTypeFixed
}

func (c *fixedPriceCalculator) Calculate(ctx context.Context, req ChargeRequest) ([]*billing.Charge, error) {
	var services []*servicecatalog.PlanService
	err := c.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		services, err = c.ServiceCatalogRepo.ListFixedForPlan(ctx, servicecatalog.FixedPlanFilter{
			CompanyID:            req.Company.ID,
			CompanyBillingPlanID: req.Plan.ID,
			ServiceCategory:      req.Plan.ServiceCategory,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	charges := make([]*billing.Charge, 0, len(services))
	for _, svc := range services {
		charge := billing.NewFixedCharge(svc.ID, svc.ServiceName, svc.Quantity, svc.Rate())
		if !req.Company.IsTaxExempt && svc.Taxable() {
			charge.ApplyTax(svc.TaxPercentage())
		}
		charges = append(charges, charge)
	}

	c.Logger.Debugw("calculated fixed price charges",
		"company_id", req.Company.ID,
		"company_billing_plan_id", req.Plan.ID,
		"count", len(charges),
		"total", billing.SumTotals(charges).String(),
	)
	return charges, nil
}

type timeBasedCalculator struct {
	ServiceParams
}

func (c *timeBasedCalculator) Type() types.ChargeType {
	return types.ChargeTypeTime
}

func (c *timeBasedCalculator) Calculate(ctx context.Context, req ChargeRequest) ([]*billing.Charge, error) {
	var entries []*timeentry.BillableEntry
	err := c.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		entries, err = c.TimeEntryRepo.ListBillable(ctx, timeentry.BillableFilter{
			CompanyID:       req.Company.ID,
			PlanID:          req.Plan.PlanID,
			ServiceCategory: req.Plan.ServiceCategory,
			Period:          req.Period,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	charges := make([]*billing.Charge, 0, len(entries))
	for _, entry := range entries {
		if lo.FromPtr(entry.ServiceID) == "" {
			return nil, ierr.NewErrorf("time entry %s has no service", entry.ID).
				WithHint("Approved time entry is missing its service").
				WithReportableDetails(map[string]any{
					"entry_id":   entry.ID,
					"company_id": req.Company.ID,
				}).
				Mark(ierr.ErrDataIntegrity)
		}
		charges = append(charges, billing.NewTimeCharge(
			*entry.ServiceID,
			entry.ServiceName,
			entry.UserID,
			entry.BilledHours(),
			entry.Rate(),
			taxRegionOr(entry.TaxRegion, req.Company.TaxRegion),
		))
	}

	c.Logger.Debugw("calculated time based charges",
		"company_id", req.Company.ID,
		"company_billing_plan_id", req.Plan.ID,
		"count", len(charges),
	)
	return charges, nil
}

type usageBasedCalculator struct {
	ServiceParams
}

func (c *usageBasedCalculator) Type() types.ChargeType {
	return types.ChargeTypeUsage
}

func (c *usageBasedCalculator) Calculate(ctx context.Context, req ChargeRequest) ([]*billing.Charge, error) {
	var records []*usage.Record
	err := c.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		records, err = c.UsageRepo.ListForPlan(ctx, usage.PlanFilter{
			CompanyID:       req.Company.ID,
			PlanID:          req.Plan.PlanID,
			ServiceCategory: req.Plan.ServiceCategory,
			Period:          req.Period,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	charges := lo.Map(records, func(r *usage.Record, _ int) *billing.Charge {
		return billing.NewUsageCharge(r.ServiceID, r.ServiceName, r.Quantity, r.Rate(),
			taxRegionOr(r.TaxRegion, req.Company.TaxRegion))
	})

	c.Logger.Debugw("calculated usage based charges",
		"company_id", req.Company.ID,
		"company_billing_plan_id", req.Plan.ID,
		"count", len(charges),
	)
	return charges, nil
}

type bucketCalculator struct {
	ServiceParams
	taxService TaxService
}

func (c *bucketCalculator) Type() types.ChargeType {
	return types.ChargeTypeBucket
}

func (c *bucketCalculator) Calculate(ctx context.Context, req ChargeRequest) ([]*billing.Charge, error) {
	var (
		plan    *bucket.Plan
		used    *bucket.Usage
		service *servicecatalog.Service
	)

	err := c.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = c.BucketRepo.GetPlanByPlanID(ctx, req.Plan.PlanID)
		if err != nil {
			if ierr.IsNotFound(err) {
				plan = nil
				return nil
			}
			return err
		}

		used, err = c.BucketRepo.GetUsage(ctx, plan.ID, req.Company.ID, req.Period)
		if err != nil {
			if ierr.IsNotFound(err) {
				used = nil
				return nil
			}
			return err
		}
		if !used.HasOverage() {
			return nil
		}

		service, err = c.ServiceCatalogRepo.Get(ctx, used.ServiceCatalogID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return ierr.NewErrorf("service %s referenced by bucket usage %s not found", used.ServiceCatalogID, used.ID).
					WithHint("Bucket usage references a service that does not exist").
					WithReportableDetails(map[string]any{
						"bucket_plan_id": plan.ID,
						"usage_id":       used.ID,
						"service_id":     used.ServiceCatalogID,
					}).
					Mark(ierr.ErrDataIntegrity)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if plan == nil || used == nil || !used.HasOverage() {
		return []*billing.Charge{}, nil
	}

	region := taxRegionOr(service.TaxRegion, req.Company.TaxRegion)
	taxRate, err := c.taxService.GetCompanyTaxRate(ctx, region, req.Period.End)
	if err != nil {
		return nil, err
	}

	name := service.ServiceName
	if name == "" {
		name = bucketFallbackServiceName
	}

	charge := billing.NewBucketCharge(service.ID, name, used.HoursUsed, used.OverageHours, plan.OverageRate, taxRate, region)

	c.Logger.Debugw("calculated bucket overage charge",
		"company_id", req.Company.ID,
		"bucket_plan_id", plan.ID,
		"overage_hours", used.OverageHours.String(),
		"total", charge.Total.String(),
		"tax_amount", charge.TaxAmount.String(),
	)
	return []*billing.Charge{charge}, nil
}
