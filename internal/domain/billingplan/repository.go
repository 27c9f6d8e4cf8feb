package billingplan

import (
	"context"

	"github.com/psaworks/psa/internal/types"
)

type Repository interface {
	// ListActiveForPeriod returns the company's active assignments overlapping
	// the period, latest start date first
	ListActiveForPeriod(ctx context.Context, companyID string, period types.BillingPeriod) ([]*CompanyBillingPlan, error)
	// GetBillingCycle returns ErrNotFound when the company has no cycle record
	GetBillingCycle(ctx context.Context, companyID string) (*CompanyBillingCycle, error)
}
