package discount

import (
	"context"

	"github.com/psaworks/psa/internal/types"
)

type Repository interface {
	// ListActiveForCompany returns the active discounts attached to the
	// company's billing plans that overlap the period
	ListActiveForCompany(ctx context.Context, companyID string, period types.BillingPeriod) ([]*Discount, error)
}
