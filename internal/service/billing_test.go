package service

import (
	"testing"

	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/billingplan"
	"github.com/psaworks/psa/internal/domain/bucket"
	"github.com/psaworks/psa/internal/domain/discount"
	"github.com/psaworks/psa/internal/domain/servicecatalog"
	"github.com/psaworks/psa/internal/domain/tax"
	"github.com/psaworks/psa/internal/domain/timeentry"
	"github.com/psaworks/psa/internal/domain/usage"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/testutil"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *BillingServiceSuite) base() *testutil.BaseServiceTestSuite {
	return &s.BaseServiceTestSuite
}

func (s *BillingServiceSuite) TestFullMonthFixedPlan() {
	s.CreateCompany("comp_1", "US-NY", false)
	addPlan(s.base(), "cbp_1", "comp_1", "bplan_1", utcDate(2023, 12, 1), nil)
	addFixedService(s.base(), "comp_1", "cbp_1", "svc_backup", dec(100), dec(1), lo.ToPtr(dec(10)), nil)

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	s.Require().Len(result.Charges, 1)
	charge := result.Charges[0]
	s.Equal(types.ChargeTypeFixed, charge.Type)
	s.True(dec(100).Equal(charge.Total), "total %s", charge.Total)
	s.True(dec(10).Equal(charge.TaxAmount), "tax %s", charge.TaxAmount)

	s.True(dec(100).Equal(result.TotalAmount))
	s.True(dec(100).Equal(result.FinalAmount), "tax is tracked apart from the final amount")
	s.True(dec(10).Equal(result.TaxTotal()))
	s.Empty(result.Discounts)
	s.NotNil(result.Discounts)
	s.NotNil(result.Adjustments)
	s.Empty(result.Adjustments)
	s.Equal(types.BillingCycleMonthly, result.BillingCycle)
	s.Equal("comp_1", result.CompanyID)
}

func (s *BillingServiceSuite) TestMidPeriodPlanIsProrated() {
	s.CreateCompany("comp_1", "US-NY", true)
	addPlan(s.base(), "cbp_1", "comp_1", "bplan_1", utcDate(2024, 1, 15), nil)
	addFixedService(s.base(), "comp_1", "cbp_1", "svc_backup", dec(100), dec(1), lo.ToPtr(dec(10)), nil)

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	s.Require().Len(result.Charges, 1)
	want := dec(100).Mul(dec(17)).Div(dec(31))
	s.True(want.Equal(result.Charges[0].Total), "total %s", result.Charges[0].Total)
	s.True(result.Charges[0].TaxAmount.IsZero(), "tax exempt company")
	s.True(want.Equal(result.FinalAmount))
}

func (s *BillingServiceSuite) TestProrationKeepsPreProrationTax() {
	s.CreateCompany("comp_1", "US-NY", false)
	addPlan(s.base(), "cbp_1", "comp_1", "bplan_1", utcDate(2024, 1, 15), nil)
	addFixedService(s.base(), "comp_1", "cbp_1", "svc_backup", dec(100), dec(1), lo.ToPtr(dec(10)), nil)

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	s.Require().Len(result.Charges, 1)
	s.True(dec(10).Equal(result.Charges[0].TaxAmount), "tax %s", result.Charges[0].TaxAmount)
	s.True(result.Charges[0].Total.LessThan(dec(100)))
}

func (s *BillingServiceSuite) TestCompanyBillingCycleDrivesProration() {
	s.CreateCompany("comp_1", "", true)
	addPlan(s.base(), "cbp_1", "comp_1", "bplan_1", utcDate(2023, 1, 1), nil)
	addFixedService(s.base(), "comp_1", "cbp_1", "svc_backup", dec(910), dec(1), nil, nil)
	s.Require().NoError(s.GetStores().BillingPlanRepo.AddCycle(s.GetContext(), &billingplan.CompanyBillingCycle{
		ID:            "cycle_1",
		TenantID:      s.TenantID(),
		CompanyID:     "comp_1",
		BillingCycle:  types.BillingCycleQuarterly,
		EffectiveDate: utcDate(2023, 1, 1),
	}))

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	s.Equal(types.BillingCycleQuarterly, result.BillingCycle)
	s.True(dec(310).Equal(result.TotalAmount), "910 * 31 / 91 = %s", result.TotalAmount)
}

func (s *BillingServiceSuite) TestNoActivePlan() {
	s.CreateCompany("comp_1", "US-NY", false)
	s.Require().NoError(s.GetStores().BillingPlanRepo.AddPlan(s.GetContext(), &billingplan.CompanyBillingPlan{
		ID:        "cbp_old",
		TenantID:  s.TenantID(),
		CompanyID: "comp_1",
		PlanID:    "bplan_1",
		StartDate: utcDate(2022, 1, 1),
		EndDate:   lo.ToPtr(utcDate(2023, 6, 30)),
		IsActive:  true,
	}))

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Nil(result)
	s.True(ierr.IsNoActivePlan(err))
}

func (s *BillingServiceSuite) TestEmptyPlanYieldsZeroResult() {
	s.CreateCompany("comp_1", "US-NY", false)
	addPlan(s.base(), "cbp_1", "comp_1", "bplan_1", utcDate(2023, 1, 1), lo.ToPtr("cat_empty"))

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)
	s.Empty(result.Charges)
	s.True(result.TotalAmount.IsZero())
	s.True(result.FinalAmount.IsZero())
}

func (s *BillingServiceSuite) TestInvalidWindow() {
	s.CreateCompany("comp_1", "US-NY", false)
	_, err := s.service.CalculateBilling(s.GetContext(), "comp_1", utcDate(2024, 2, 1), utcDate(2024, 1, 1))
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestUnknownCompany() {
	period := monthPeriod(2024, 1)
	_, err := s.service.CalculateBilling(s.GetContext(), "comp_missing", period.Start, period.End)
	s.True(ierr.IsNotFound(err))
}

// seedAllChargeTypes sets up one plan producing every charge type:
// fixed 100, time 2h x 150, usage 3 x 12 and bucket overage 5h x 75
func (s *BillingServiceSuite) seedAllChargeTypes() {
	ctx := s.GetContext()
	tenant := s.TenantID()

	s.CreateCompany("comp_1", "US-NY", false)
	addPlan(s.base(), "cbp_1", "comp_1", "bplan_1", utcDate(2023, 1, 1), nil)
	addFixedService(s.base(), "comp_1", "cbp_1", "svc_backup", dec(100), dec(1), nil, lo.ToPtr(false))

	s.Require().NoError(s.GetStores().TimeEntryRepo.Add(ctx, &testutil.TimeEntryRecord{
		Entry: timeentry.BillableEntry{
			TimeEntry: timeentry.TimeEntry{
				ID:             "te_1",
				TenantID:       tenant,
				WorkItemID:     "ticket_1",
				WorkItemType:   types.WorkItemTypeTicket,
				UserID:         "user_1",
				StartTime:      utcTime(2024, 1, 10, 9, 0),
				EndTime:        utcTime(2024, 1, 10, 11, 45),
				ApprovalStatus: types.ApprovalStatusApproved,
				ServiceID:      lo.ToPtr("svc_consulting"),
			},
			ServiceName: "Consulting",
			DefaultRate: dec(150),
		},
		CompanyID: "comp_1",
		PlanIDs:   []string{"bplan_1"},
	}))

	s.Require().NoError(s.GetStores().UsageRepo.Add(ctx, &testutil.UsageRecord{
		Record: usage.Record{
			ID:          "use_1",
			TenantID:    tenant,
			CompanyID:   "comp_1",
			ServiceID:   "svc_storage",
			UsageDate:   utcDate(2024, 1, 20),
			Quantity:    dec(3),
			ServiceName: "Storage",
			DefaultRate: dec(10),
			CustomRate:  lo.ToPtr(dec(12)),
		},
		PlanID: "bplan_1",
	}))

	s.Require().NoError(s.GetStores().ServiceCatalogRepo.AddService(ctx, &servicecatalog.Service{
		ID:          "svc_support",
		TenantID:    tenant,
		ServiceName: "Premium Support",
		ServiceType: types.ServiceTypeTime,
	}))
	s.Require().NoError(s.GetStores().BucketRepo.AddPlan(ctx, &bucket.Plan{
		ID:          "bucket_1",
		TenantID:    tenant,
		PlanID:      "bplan_1",
		TotalHours:  dec(40),
		OverageRate: dec(75),
	}))
	s.Require().NoError(s.GetStores().BucketRepo.AddUsage(ctx, &bucket.Usage{
		ID:               "bu_1",
		TenantID:         tenant,
		BucketPlanID:     "bucket_1",
		CompanyID:        "comp_1",
		PeriodStart:      utcDate(2024, 1, 1),
		PeriodEnd:        utcDate(2024, 2, 1),
		HoursUsed:        dec(45),
		OverageHours:     dec(5),
		ServiceCatalogID: "svc_support",
	}))
	s.Require().NoError(s.GetStores().TaxRateRepo.Add(ctx, &tax.Rate{
		ID:            "taxr_ny",
		TenantID:      tenant,
		Region:        "US-NY",
		TaxPercentage: decimal.RequireFromString("8.25"),
		StartDate:     utcDate(2020, 1, 1),
	}))
}

func (s *BillingServiceSuite) TestEveryChargeTypeIsCombined() {
	s.seedAllChargeTypes()

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	s.Len(result.ChargesOfType(types.ChargeTypeFixed), 1)

	timeCharges := result.ChargesOfType(types.ChargeTypeTime)
	s.Require().Len(timeCharges, 1)
	s.Equal(int64(2), timeCharges[0].Time.Duration, "partial hours are dropped")
	s.True(dec(300).Equal(timeCharges[0].Total))
	s.Equal("US-NY", timeCharges[0].TaxRegion)

	usageCharges := result.ChargesOfType(types.ChargeTypeUsage)
	s.Require().Len(usageCharges, 1)
	s.True(dec(36).Equal(usageCharges[0].Total), "custom rate wins")

	bucketCharges := result.ChargesOfType(types.ChargeTypeBucket)
	s.Require().Len(bucketCharges, 1)
	s.True(dec(375).Equal(bucketCharges[0].Total))
	s.True(dec(31).Equal(bucketCharges[0].TaxAmount), "ceil(0.0825 * 375)")
	s.Equal("Premium Support", bucketCharges[0].ServiceName)

	s.True(dec(811).Equal(result.TotalAmount), "total %s", result.TotalAmount)
	s.True(dec(811).Equal(result.FinalAmount))
}

func (s *BillingServiceSuite) TestDiscountsApplyToCombinedTotal() {
	s.seedAllChargeTypes()
	ctx := s.GetContext()

	for _, d := range []discount.Discount{
		{ID: "disc_pct", DiscountType: types.DiscountTypePercentage, Value: dec(10)},
		{ID: "disc_fixed", DiscountType: types.DiscountTypeFixed, Value: dec(50)},
	} {
		d.TenantID = s.TenantID()
		d.IsActive = true
		d.StartDate = utcDate(2023, 1, 1)
		s.Require().NoError(s.GetStores().DiscountRepo.Add(ctx, &testutil.DiscountRecord{Discount: d, CompanyID: "comp_1"}))
	}

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(ctx, "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	s.Len(result.Discounts, 2)
	s.True(decimal.RequireFromString("131.1").Equal(result.DiscountTotal), "discount total %s", result.DiscountTotal)
	s.True(decimal.RequireFromString("679.9").Equal(result.FinalAmount), "final %s", result.FinalAmount)
	s.True(dec(811).Equal(result.TotalAmount))
}

func (s *BillingServiceSuite) TestCalculatorFailureAbortsRun() {
	s.seedAllChargeTypes()

	s.Require().NoError(s.GetStores().TimeEntryRepo.Add(s.GetContext(), &testutil.TimeEntryRecord{
		Entry: timeentry.BillableEntry{
			TimeEntry: timeentry.TimeEntry{
				ID:             "te_broken",
				TenantID:       s.TenantID(),
				StartTime:      utcTime(2024, 1, 11, 9, 0),
				EndTime:        utcTime(2024, 1, 11, 10, 0),
				ApprovalStatus: types.ApprovalStatusApproved,
			},
			DefaultRate: dec(150),
		},
		CompanyID: "comp_1",
		PlanIDs:   []string{"bplan_1"},
	}))

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Nil(result)
	s.True(ierr.IsDataIntegrity(err))
}

func (s *BillingServiceSuite) TestOverlappingPlansAreAllBilled() {
	s.CreateCompany("comp_1", "", true)
	addPlan(s.base(), "cbp_1", "comp_1", "bplan_1", utcDate(2023, 1, 1), nil)
	addPlan(s.base(), "cbp_2", "comp_1", "bplan_2", utcDate(2023, 6, 1), nil)
	addFixedService(s.base(), "comp_1", "cbp_1", "svc_a", dec(100), dec(1), nil, nil)
	addFixedService(s.base(), "comp_1", "cbp_2", "svc_b", dec(40), dec(2), nil, nil)

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	s.Len(result.Charges, 2)
	s.True(dec(180).Equal(result.TotalAmount))
}

func (s *BillingServiceSuite) TestSequentialCalculatorsGiveSameResult() {
	s.seedAllChargeTypes()
	s.GetConfig().Billing.CalculatorConcurrency = 1

	period := monthPeriod(2024, 1)
	result, err := s.service.CalculateBilling(s.GetContext(), "comp_1", period.Start, period.End)
	s.Require().NoError(err)

	got := lo.Map(result.Charges, func(c *billing.Charge, _ int) types.ChargeType { return c.Type })
	s.Equal([]types.ChargeType{
		types.ChargeTypeFixed,
		types.ChargeTypeTime,
		types.ChargeTypeUsage,
		types.ChargeTypeBucket,
	}, got)
	s.True(dec(811).Equal(result.TotalAmount))
}
