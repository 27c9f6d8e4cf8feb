package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a regional tax rate valid over [StartDate, EndDate]
type Rate struct {
	ID            string          `db:"tax_rate_id" json:"tax_rate_id"`
	TenantID      string          `db:"tenant" json:"tenant"`
	Region        string          `db:"region" json:"region"`
	TaxPercentage decimal.Decimal `db:"tax_percentage" json:"tax_percentage"`
	Description   string          `db:"description" json:"description"`
	StartDate     time.Time       `db:"start_date" json:"start_date"`
	EndDate       *time.Time      `db:"end_date" json:"end_date,omitempty"`
}

// Fraction returns the rate as a multiplier, 8.25% is 0.0825
func (r *Rate) Fraction() decimal.Decimal {
	return r.TaxPercentage.Div(decimal.NewFromInt(100))
}

type Repository interface {
	// GetForRegion returns the rate in effect for region at asOf or ErrNotFound
	GetForRegion(ctx context.Context, region string, asOf time.Time) (*Rate, error)
}
