package service

import (
	"testing"

	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/proration"
	"github.com/psaworks/psa/internal/testutil"
	"github.com/psaworks/psa/internal/types"
	"github.com/stretchr/testify/suite"
)

type ProrationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ProrationService
}

func TestProrationService(t *testing.T) {
	suite.Run(t, new(ProrationServiceSuite))
}

func (s *ProrationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewProrationService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *ProrationServiceSuite) TestFactorForMidMonthStart() {
	factor, err := s.service.CalculateProration(s.GetContext(), proration.Params{
		Period:       monthPeriod(2024, 1),
		PlanStart:    utcDate(2024, 1, 15),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.Require().NoError(err)
	s.Equal(17, factor.ActualDays)
	s.Equal(31, factor.CycleDays)
	s.Equal(utcDate(2024, 1, 15), factor.EffectiveStart)
}

func (s *ProrationServiceSuite) TestPlanStartedBeforePeriod() {
	factor, err := s.service.CalculateProration(s.GetContext(), proration.Params{
		Period:       monthPeriod(2024, 2),
		PlanStart:    utcDate(2023, 5, 1),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.Require().NoError(err)
	s.Equal(29, factor.ActualDays)
	s.Equal(29, factor.CycleDays)
	s.True(dec(1).Equal(factor.Value))
}

func (s *ProrationServiceSuite) TestInvalidPeriod() {
	_, err := s.service.CalculateProration(s.GetContext(), proration.Params{
		Period:       types.BillingPeriod{Start: utcDate(2024, 2, 1), End: utcDate(2024, 1, 1)},
		PlanStart:    utcDate(2024, 1, 1),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.Error(err)
}

func (s *ProrationServiceSuite) TestOnlyFixedChargesAreScaled() {
	fixed := billing.NewFixedCharge("svc_fixed", "Monitoring", dec(1), dec(310))
	fixed.ApplyTax(dec(10))
	usage := billing.NewUsageCharge("svc_usage", "Storage", dec(10), dec(5), "US-NY")

	prorated, err := s.service.ApplyProration(s.GetContext(),
		[]*billing.Charge{fixed, usage},
		monthPeriod(2024, 1),
		utcDate(2024, 1, 22),
		types.BillingCycleMonthly,
	)
	s.Require().NoError(err)
	s.Require().Len(prorated, 2)

	s.True(dec(100).Equal(prorated[0].Total), "310 * 10 / 31 = %s", prorated[0].Total)
	s.True(dec(31).Equal(prorated[0].TaxAmount), "tax keeps its pre-proration value")
	s.Same(usage, prorated[1])
	s.True(dec(310).Equal(fixed.Total), "input charge is not mutated")
}
