package timeentry

import (
	"time"

	"github.com/psaworks/psa/internal/domain/servicecatalog"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
)

type TimeEntry struct {
	ID             string               `db:"entry_id" json:"entry_id"`
	TenantID       string               `db:"tenant" json:"tenant"`
	WorkItemID     string               `db:"work_item_id" json:"work_item_id"`
	WorkItemType   types.WorkItemType   `db:"work_item_type" json:"work_item_type"`
	UserID         string               `db:"user_id" json:"user_id"`
	StartTime      time.Time            `db:"start_time" json:"start_time"`
	EndTime        time.Time            `db:"end_time" json:"end_time"`
	ApprovalStatus types.ApprovalStatus `db:"approval_status" json:"approval_status"`
	ServiceID      *string              `db:"service_id" json:"service_id,omitempty"`
	TaxRegion      *string              `db:"tax_region" json:"tax_region,omitempty"`
	Notes          string               `db:"notes" json:"notes"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
}

func (e *TimeEntry) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// MovedTo returns the start and end the entry gets when re-anchored at start,
// keeping its duration exactly
func (e *TimeEntry) MovedTo(start time.Time) (time.Time, time.Time) {
	start = start.UTC()
	return start, start.Add(e.Duration())
}

// BillableEntry is an approved entry joined with its service and plan rate
type BillableEntry struct {
	TimeEntry
	ServiceName string           `db:"service_name" json:"service_name"`
	DefaultRate decimal.Decimal  `db:"default_rate" json:"default_rate"`
	CustomRate  *decimal.Decimal `db:"custom_rate" json:"custom_rate,omitempty"`
}

func (e *BillableEntry) Rate() decimal.Decimal {
	return servicecatalog.EffectiveRate(e.CustomRate, e.DefaultRate)
}

// BilledHours is the entry duration in whole hours, partial hours are dropped
func (e *BillableEntry) BilledHours() int64 {
	return types.WholeHoursBetween(e.StartTime, e.EndTime)
}

// RolledEntry records one entry moved into the next period
type RolledEntry struct {
	EntryID       string
	PreviousStart time.Time
	PreviousEnd   time.Time
	StartTime     time.Time
	EndTime       time.Time
}

// RolloverFailure records an entry that could not be moved
type RolloverFailure struct {
	EntryID string
	Err     error
}

// RolloverResult reports the outcome of a rollover. In atomic mode Failed is
// always empty: either every entry moved or the call returned an error.
type RolloverResult struct {
	Mode   types.RolloverMode
	Moved  []*RolledEntry
	Failed []*RolloverFailure
}
