package billingplan

import (
	"time"

	"github.com/psaworks/psa/internal/types"
)

// CompanyBillingPlan assigns a billing plan to a company for a date range.
// Overlapping assignments are allowed and all of them are billed.
type CompanyBillingPlan struct {
	ID              string     `db:"company_billing_plan_id" json:"company_billing_plan_id"`
	TenantID        string     `db:"tenant" json:"tenant"`
	CompanyID       string     `db:"company_id" json:"company_id"`
	PlanID          string     `db:"plan_id" json:"plan_id"`
	ServiceCategory *string    `db:"service_category" json:"service_category,omitempty"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive        bool       `db:"is_active" json:"is_active"`
}

// CoversPeriod reports whether the assignment is active and overlaps the
// period, using the same inclusive bounds as the plan lookup query
func (p *CompanyBillingPlan) CoversPeriod(period types.BillingPeriod) bool {
	if !p.IsActive || p.StartDate.After(period.End) {
		return false
	}
	return p.EndDate == nil || !p.EndDate.Before(period.Start)
}

// CompanyBillingCycle is the per company billing cadence record
type CompanyBillingCycle struct {
	ID            string             `db:"billing_cycle_id" json:"billing_cycle_id"`
	TenantID      string             `db:"tenant" json:"tenant"`
	CompanyID     string             `db:"company_id" json:"company_id"`
	BillingCycle  types.BillingCycle `db:"billing_cycle" json:"billing_cycle"`
	EffectiveDate time.Time          `db:"effective_date" json:"effective_date"`
}
