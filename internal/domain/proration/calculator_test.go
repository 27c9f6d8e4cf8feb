package proration

import (
	"testing"
	"time"

	"github.com/psaworks/psa/internal/domain/billing"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculator_Factor(t *testing.T) {
	january := types.BillingPeriod{Start: date(2024, 1, 1), End: date(2024, 2, 1)}

	tests := []struct {
		name       string
		params     Params
		actualDays int
		cycleDays  int
	}{
		{
			name:       "plan active before period",
			params:     Params{Period: january, PlanStart: date(2023, 6, 1), BillingCycle: types.BillingCycleMonthly},
			actualDays: 31,
			cycleDays:  31,
		},
		{
			name:       "plan starts mid period",
			params:     Params{Period: january, PlanStart: date(2024, 1, 15), BillingCycle: types.BillingCycleMonthly},
			actualDays: 17,
			cycleDays:  31,
		},
		{
			name:       "weekly cycle over a month",
			params:     Params{Period: january, PlanStart: date(2023, 6, 1), BillingCycle: types.BillingCycleWeekly},
			actualDays: 31,
			cycleDays:  7,
		},
		{
			name:       "quarterly cycle",
			params:     Params{Period: january, PlanStart: date(2024, 1, 1), BillingCycle: types.BillingCycleQuarterly},
			actualDays: 31,
			cycleDays:  91,
		},
		{
			name:       "leap february",
			params:     Params{Period: types.BillingPeriod{Start: date(2024, 2, 1), End: date(2024, 3, 1)}, PlanStart: date(2024, 2, 10), BillingCycle: types.BillingCycleMonthly},
			actualDays: 20,
			cycleDays:  29,
		},
	}

	calc := NewCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := calc.Factor(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.actualDays, f.ActualDays)
			assert.Equal(t, tt.cycleDays, f.CycleDays)

			want := decimal.NewFromInt(int64(tt.actualDays)).Div(decimal.NewFromInt(int64(tt.cycleDays)))
			assert.True(t, want.Equal(f.Value), "factor %s, want %s", f.Value, want)
		})
	}
}

func TestCalculator_FactorRejectsInvalidPeriod(t *testing.T) {
	_, err := NewCalculator().Factor(Params{
		Period:       types.BillingPeriod{Start: date(2024, 2, 1), End: date(2024, 1, 1)},
		BillingCycle: types.BillingCycleMonthly,
	})
	assert.True(t, ierr.IsValidation(err))
}

func TestCalculator_ApplyOnlyTouchesFixedCharges(t *testing.T) {
	calc := NewCalculator()
	f, err := calc.Factor(Params{
		Period:       types.BillingPeriod{Start: date(2024, 1, 1), End: date(2024, 2, 1)},
		PlanStart:    date(2024, 1, 15),
		BillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)

	fixed := billing.NewFixedCharge("svc_1", "Managed Backup", decimal.NewFromInt(1), decimal.NewFromInt(310))
	fixed.ApplyTax(decimal.NewFromInt(10))
	hourly := billing.NewTimeCharge("svc_2", "Consulting", "user_1", 2, decimal.NewFromInt(100), "")

	out := calc.Apply([]*billing.Charge{fixed, hourly}, f)
	require.Len(t, out, 2)

	assert.True(t, decimal.NewFromInt(170).Equal(out[0].Total), "got %s", out[0].Total)
	assert.True(t, decimal.NewFromInt(31).Equal(out[0].TaxAmount), "tax stays at its unprorated value")
	assert.True(t, decimal.NewFromInt(200).Equal(out[1].Total))
	assert.Same(t, hourly, out[1])
}
