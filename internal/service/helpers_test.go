package service

import (
	"time"

	"github.com/psaworks/psa/internal/domain/billingplan"
	"github.com/psaworks/psa/internal/domain/proration"
	"github.com/psaworks/psa/internal/domain/servicecatalog"
	"github.com/psaworks/psa/internal/testutil"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

// newTestServiceParams wires the in-memory stores of the suite into ServiceParams
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:                 s.GetLogger(),
		Config:                 s.GetConfig(),
		DB:                     s.GetDB(),
		Cache:                  s.GetCache(),
		CompanyRepo:            stores.CompanyRepo,
		BillingPlanRepo:        stores.BillingPlanRepo,
		ServiceCatalogRepo:     stores.ServiceCatalogRepo,
		TimeEntryRepo:          stores.TimeEntryRepo,
		UsageRepo:              stores.UsageRepo,
		BucketRepo:             stores.BucketRepo,
		DiscountRepo:           stores.DiscountRepo,
		TaxRateRepo:            stores.TaxRateRepo,
		TimePeriodSettingsRepo: stores.TimePeriodSettingsRepo,
		TimePeriodRepo:         stores.TimePeriodRepo,
		ProrationCalculator:    proration.NewCalculator(),
		Sentry:                 s.GetSentry(),
		Pyroscope:              s.GetPyroscope(),
	}
}

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func utcTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func monthPeriod(year int, month time.Month) types.BillingPeriod {
	start := utcDate(year, month, 1)
	return types.BillingPeriod{Start: start, End: types.FirstDayOfMonthAfter(start, 1)}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// addPlan assigns a billing plan to the company
func addPlan(s *testutil.BaseServiceTestSuite, id, companyID, planID string, start time.Time, category *string) *billingplan.CompanyBillingPlan {
	p := &billingplan.CompanyBillingPlan{
		ID:              id,
		TenantID:        s.TenantID(),
		CompanyID:       companyID,
		PlanID:          planID,
		ServiceCategory: category,
		StartDate:       start,
		IsActive:        true,
	}
	s.Require().NoError(s.GetStores().BillingPlanRepo.AddPlan(s.GetContext(), p))
	return p
}

// addFixedService attaches a fixed price service to a company billing plan
func addFixedService(s *testutil.BaseServiceTestSuite, companyID, cbpID, serviceID string, rate, quantity decimal.Decimal, taxPercent *decimal.Decimal, taxable *bool) *servicecatalog.PlanService {
	svc := &servicecatalog.PlanService{
		Service: servicecatalog.Service{
			ID:          serviceID,
			TenantID:    s.TenantID(),
			ServiceName: "Service " + serviceID,
			ServiceType: types.ServiceTypeFixed,
			DefaultRate: rate,
			TaxRate:     taxPercent,
			IsTaxable:   taxable,
		},
		Quantity: quantity,
	}
	s.Require().NoError(s.GetStores().ServiceCatalogRepo.AddService(s.GetContext(), &svc.Service))
	s.Require().NoError(s.GetStores().ServiceCatalogRepo.AddPlanService(s.GetContext(), companyID, cbpID, svc))
	return svc
}
