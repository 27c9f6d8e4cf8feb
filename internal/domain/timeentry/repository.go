package timeentry

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/types"
)

// BillableFilter selects the approved time a plan bills for
type BillableFilter struct {
	CompanyID       string
	PlanID          string
	ServiceCategory *string
	Period          types.BillingPeriod
}

type Repository interface {
	// ListBillable returns approved entries inside the period whose work item
	// (ticket or project task) belongs to the company and whose service is in
	// the plan under the plan's service category
	ListBillable(ctx context.Context, filter BillableFilter) ([]*BillableEntry, error)
	// ListUnapproved returns the company's draft, submitted and changes
	// requested entries ending at or before endsBy
	ListUnapproved(ctx context.Context, companyID string, endsBy time.Time) ([]*TimeEntry, error)
	UpdateTimes(ctx context.Context, entryID string, start, end time.Time) error
}
