package types

import (
	"time"

	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/samber/lo"
)

// BillingCycle is the cadence a company is billed on. It only affects the
// proration denominator, never the period boundaries.
type BillingCycle string

const (
	BillingCycleWeekly       BillingCycle = "weekly"
	BillingCycleBiWeekly     BillingCycle = "bi-weekly"
	BillingCycleMonthly      BillingCycle = "monthly"
	BillingCycleQuarterly    BillingCycle = "quarterly"
	BillingCycleSemiAnnually BillingCycle = "semi-annually"
	BillingCycleAnnually     BillingCycle = "annually"
)

func (c BillingCycle) String() string {
	return string(c)
}

func (c BillingCycle) Validate() error {
	allowed := []BillingCycle{
		BillingCycleWeekly,
		BillingCycleBiWeekly,
		BillingCycleMonthly,
		BillingCycleQuarterly,
		BillingCycleSemiAnnually,
		BillingCycleAnnually,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid billing cycle").
			WithHint("Billing cycle must be one of weekly, bi-weekly, monthly, quarterly, semi-annually or annually").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"value":   c,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CycleLengthDays is the proration denominator for the cycle. Monthly uses
// the length of the calendar month periodStart falls in. Unknown cycles are
// treated as monthly.
func (c BillingCycle) CycleLengthDays(periodStart time.Time) int {
	switch c {
	case BillingCycleWeekly:
		return 7
	case BillingCycleBiWeekly:
		return 14
	case BillingCycleQuarterly:
		return 91
	case BillingCycleSemiAnnually:
		return 182
	case BillingCycleAnnually:
		return 365
	default:
		return DaysInMonth(periodStart.UTC().Year(), periodStart.UTC().Month())
	}
}

// ChargeType tags the variant of a billing charge
type ChargeType string

const (
	ChargeTypeFixed  ChargeType = "fixed"
	ChargeTypeTime   ChargeType = "time"
	ChargeTypeUsage  ChargeType = "usage"
	ChargeTypeBucket ChargeType = "bucket"
)

// FrequencyUnit is the unit of a time period setting
type FrequencyUnit string

const (
	FrequencyUnitDay   FrequencyUnit = "day"
	FrequencyUnitWeek  FrequencyUnit = "week"
	FrequencyUnitMonth FrequencyUnit = "month"
	FrequencyUnitYear  FrequencyUnit = "year"
)

func (u FrequencyUnit) Validate() error {
	allowed := []FrequencyUnit{FrequencyUnitDay, FrequencyUnitWeek, FrequencyUnitMonth, FrequencyUnitYear}
	if !lo.Contains(allowed, u) {
		return ierr.NewError("invalid frequency unit").
			WithHint("Frequency unit must be one of day, week, month or year").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"value":   u,
			}).
			Mark(ierr.ErrConfiguration)
	}
	return nil
}

// ApprovalStatus is the approval state of a time entry
type ApprovalStatus string

const (
	ApprovalStatusDraft            ApprovalStatus = "DRAFT"
	ApprovalStatusSubmitted        ApprovalStatus = "SUBMITTED"
	ApprovalStatusApproved         ApprovalStatus = "APPROVED"
	ApprovalStatusChangesRequested ApprovalStatus = "CHANGES_REQUESTED"
)

// RolloverStatuses are the approval states whose entries move to the next period
func RolloverStatuses() []ApprovalStatus {
	return []ApprovalStatus{
		ApprovalStatusDraft,
		ApprovalStatusSubmitted,
		ApprovalStatusChangesRequested,
	}
}

// WorkItemType identifies what a time entry was logged against
type WorkItemType string

const (
	WorkItemTypeTicket      WorkItemType = "ticket"
	WorkItemTypeProjectTask WorkItemType = "project_task"
)

// ServiceType is the catalog classification of a service
type ServiceType string

const (
	ServiceTypeFixed ServiceType = "Fixed"
	ServiceTypeTime  ServiceType = "Time"
	ServiceTypeUsage ServiceType = "Usage"
)

// RolloverMode selects how unapproved time is moved between periods
type RolloverMode string

const (
	// RolloverModeAtomic moves every matching entry in one transaction
	RolloverModeAtomic RolloverMode = "atomic"
	// RolloverModePerEntry moves entries one by one and reports the failures
	RolloverModePerEntry RolloverMode = "per_entry"
)

func (m RolloverMode) Validate() error {
	allowed := []RolloverMode{RolloverModeAtomic, RolloverModePerEntry}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid rollover mode").
			WithHint("Rollover mode must be atomic or per_entry").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"value":   m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
