package types

import (
	"time"

	ierr "github.com/psaworks/psa/internal/errors"
)

// BillingPeriod is the half-open window [Start, End) a billing run covers
type BillingPeriod struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewBillingPeriod builds a validated period from two UTC instants
func NewBillingPeriod(start, end time.Time) (BillingPeriod, error) {
	p := BillingPeriod{Start: start.UTC(), End: end.UTC()}
	if err := p.Validate(); err != nil {
		return BillingPeriod{}, err
	}
	return p, nil
}

func (p BillingPeriod) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ierr.NewError("billing period bounds are required").
			WithHint("Billing period start and end dates are required").
			Mark(ierr.ErrValidation)
	}
	if !p.Start.Before(p.End) {
		return ierr.NewError("billing period start must be before its end").
			WithHint("Billing period start date must be before its end date").
			WithReportableDetails(map[string]any{
				"start_date": FormatTimestamp(p.Start),
				"end_date":   FormatTimestamp(p.End),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Contains reports whether t falls inside [Start, End)
func (p BillingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

func (p BillingPeriod) String() string {
	return FormatTimestamp(p.Start) + "/" + FormatTimestamp(p.End)
}
