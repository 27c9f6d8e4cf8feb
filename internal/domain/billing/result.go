package billing

import (
	"github.com/psaworks/psa/internal/domain/discount"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Result is the outcome of one billing run. Tax is tracked on the charges and
// is neither added to nor subtracted from FinalAmount.
type Result struct {
	CompanyID     string
	Period        types.BillingPeriod
	BillingCycle  types.BillingCycle
	Charges       []*Charge
	TotalAmount   decimal.Decimal
	Discounts     []*discount.Discount
	Adjustments   []*discount.Adjustment
	DiscountTotal decimal.Decimal
	FinalAmount   decimal.Decimal
}

// NewResult sums the charges. Discounts and adjustments start empty, not nil.
func NewResult(companyID string, period types.BillingPeriod, cycle types.BillingCycle, charges []*Charge) *Result {
	if charges == nil {
		charges = []*Charge{}
	}
	total := SumTotals(charges)
	return &Result{
		CompanyID:    companyID,
		Period:       period,
		BillingCycle: cycle,
		Charges:      charges,
		TotalAmount:  total,
		Discounts:    []*discount.Discount{},
		Adjustments:  []*discount.Adjustment{},
		FinalAmount:  total,
	}
}

func (r *Result) TaxTotal() decimal.Decimal {
	return lo.Reduce(r.Charges, func(acc decimal.Decimal, c *Charge, _ int) decimal.Decimal {
		return acc.Add(c.TaxAmount)
	}, decimal.Zero)
}

// ChargesOfType returns the charges of one variant in result order
func (r *Result) ChargesOfType(t types.ChargeType) []*Charge {
	return lo.Filter(r.Charges, func(c *Charge, _ int) bool {
		return c.Type == t
	})
}

func SumTotals(charges []*Charge) decimal.Decimal {
	return lo.Reduce(charges, func(acc decimal.Decimal, c *Charge, _ int) decimal.Decimal {
		return acc.Add(c.Total)
	}, decimal.Zero)
}
