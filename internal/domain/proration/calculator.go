package proration

import (
	"time"

	"github.com/psaworks/psa/internal/domain/billing"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Params holds the inputs for prorating a plan's fixed charges
type Params struct {
	Period       types.BillingPeriod
	PlanStart    time.Time
	BillingCycle types.BillingCycle
}

// Factor is the computed proration with the values it was derived from
type Factor struct {
	EffectiveStart time.Time
	ActualDays     int
	CycleDays      int
	Value          decimal.Decimal
}

// Calculator scales fixed charges by the share of the billing cycle a plan
// was active for
type Calculator interface {
	Factor(params Params) (*Factor, error)
	// Apply scales fixed charges and returns the others unchanged. Tax amounts
	// keep their pre-proration value.
	Apply(charges []*billing.Charge, factor *Factor) []*billing.Charge
}

// NewCalculator creates the day based proration calculator
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// dayBasedCalculator counts whole days from the later of plan start and
// period start up to the period end.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) Factor(params Params) (*Factor, error) {
	if err := params.Period.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Cannot prorate over an invalid billing period").
			Mark(ierr.ErrValidation)
	}

	effectiveStart := params.Period.Start
	if params.PlanStart.After(effectiveStart) {
		effectiveStart = params.PlanStart.UTC()
	}

	cycleDays := params.BillingCycle.CycleLengthDays(params.Period.Start)
	actualDays := lo.Max([]int{types.DaysBetween(effectiveStart, params.Period.End), 0})

	return &Factor{
		EffectiveStart: effectiveStart,
		ActualDays:     actualDays,
		CycleDays:      cycleDays,
		Value:          decimal.NewFromInt(int64(actualDays)).Div(decimal.NewFromInt(int64(cycleDays))),
	}, nil
}

func (c *dayBasedCalculator) Apply(charges []*billing.Charge, factor *Factor) []*billing.Charge {
	return lo.Map(charges, func(ch *billing.Charge, _ int) *billing.Charge {
		if ch.Type != types.ChargeTypeFixed {
			return ch
		}
		// multiply before dividing so whole results stay exact
		prorated := ch.Total.Mul(decimal.NewFromInt(int64(factor.ActualDays))).
			Div(decimal.NewFromInt(int64(factor.CycleDays)))
		return ch.WithTotal(prorated)
	})
}
