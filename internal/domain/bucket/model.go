package bucket

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is the prepaid hours allotment attached to a billing plan
type Plan struct {
	ID          string          `db:"bucket_plan_id" json:"bucket_plan_id"`
	TenantID    string          `db:"tenant" json:"tenant"`
	PlanID      string          `db:"plan_id" json:"plan_id"`
	TotalHours  decimal.Decimal `db:"total_hours" json:"total_hours"`
	OverageRate decimal.Decimal `db:"overage_rate" json:"overage_rate"`
}

// Usage is a company's recorded consumption of a bucket plan for one period
type Usage struct {
	ID               string          `db:"usage_id" json:"usage_id"`
	TenantID         string          `db:"tenant" json:"tenant"`
	BucketPlanID     string          `db:"bucket_plan_id" json:"bucket_plan_id"`
	CompanyID        string          `db:"company_id" json:"company_id"`
	PeriodStart      time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd        time.Time       `db:"period_end" json:"period_end"`
	HoursUsed        decimal.Decimal `db:"hours_used" json:"hours_used"`
	OverageHours     decimal.Decimal `db:"overage_hours" json:"overage_hours"`
	ServiceCatalogID string          `db:"service_catalog_id" json:"service_catalog_id"`
}

func (u *Usage) HasOverage() bool {
	return u.OverageHours.IsPositive()
}

type Repository interface {
	// GetPlanByPlanID returns ErrNotFound when the billing plan has no bucket
	GetPlanByPlanID(ctx context.Context, planID string) (*Plan, error)
	// GetUsage returns the usage row whose period_start falls inside the
	// period (both bounds inclusive) or ErrNotFound
	GetUsage(ctx context.Context, bucketPlanID, companyID string, period types.BillingPeriod) (*Usage, error)
}
