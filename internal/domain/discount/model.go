package discount

import (
	"time"

	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

type Discount struct {
	ID           string             `db:"discount_id" json:"discount_id"`
	TenantID     string             `db:"tenant" json:"tenant"`
	DiscountName string             `db:"discount_name" json:"discount_name"`
	DiscountType types.DiscountType `db:"discount_type" json:"discount_type"`
	Value        decimal.Decimal    `db:"value" json:"value"`
	IsActive     bool               `db:"is_active" json:"is_active"`
	StartDate    time.Time          `db:"start_date" json:"start_date"`
	EndDate      *time.Time         `db:"end_date" json:"end_date,omitempty"`
	// Amount is computed per billing run and never stored
	Amount decimal.Decimal `db:"-" json:"amount"`
}

// AmountFor computes the discount against an undiscounted total. Percentage
// values are whole percents.
func (d *Discount) AmountFor(total decimal.Decimal) (decimal.Decimal, error) {
	switch d.DiscountType {
	case types.DiscountTypePercentage:
		return total.Mul(d.Value).Div(decimal.NewFromInt(100)), nil
	case types.DiscountTypeFixed:
		return d.Value, nil
	default:
		return decimal.Zero, d.DiscountType.Validate()
	}
}

// Adjustment is a manual credit or debit against a billing result
type Adjustment struct {
	ID     string          `db:"adjustment_id" json:"adjustment_id"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
	Reason string          `db:"reason" json:"reason"`
}
