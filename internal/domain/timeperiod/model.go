package timeperiod

import (
	"time"

	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

// Settings describes how a tenant's recurring periods are cut. Week and month
// settings align on StartDay/EndDay (weekday 1-7 with 7 = Sunday, or day of
// month 1-31). Year settings are anchored on the four month/day fields.
type Settings struct {
	ID              string              `db:"time_period_settings_id" json:"time_period_settings_id"`
	TenantID        string              `db:"tenant" json:"tenant"`
	Frequency       int                 `db:"frequency" json:"frequency"`
	FrequencyUnit   types.FrequencyUnit `db:"frequency_unit" json:"frequency_unit"`
	IsActive        bool                `db:"is_active" json:"is_active"`
	EffectiveFrom   time.Time           `db:"effective_from" json:"effective_from"`
	EffectiveTo     *time.Time          `db:"effective_to" json:"effective_to,omitempty"`
	StartDay        *int                `db:"start_day" json:"start_day,omitempty"`
	EndDay          *int                `db:"end_day" json:"end_day,omitempty"`
	StartMonth      *int                `db:"start_month" json:"start_month,omitempty"`
	StartDayOfMonth *int                `db:"start_day_of_month" json:"start_day_of_month,omitempty"`
	EndMonth        *int                `db:"end_month" json:"end_month,omitempty"`
	EndDayOfMonth   *int                `db:"end_day_of_month" json:"end_day_of_month,omitempty"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// Validate checks the alignment fields against the frequency unit.
// Every failure is a configuration error.
func (s *Settings) Validate() error {
	if s.Frequency < 1 {
		return configError(s, "frequency must be at least 1")
	}
	if err := s.FrequencyUnit.Validate(); err != nil {
		return err
	}
	if s.EffectiveTo != nil && !s.EffectiveTo.After(s.EffectiveFrom) {
		return configError(s, "effective_to must be after effective_from")
	}

	hasYearFields := s.StartMonth != nil || s.StartDayOfMonth != nil || s.EndMonth != nil || s.EndDayOfMonth != nil
	hasDayFields := s.StartDay != nil || s.EndDay != nil

	switch s.FrequencyUnit {
	case types.FrequencyUnitDay:
		if hasYearFields || hasDayFields {
			return configError(s, "day settings take no alignment fields")
		}
	case types.FrequencyUnitWeek:
		if hasYearFields {
			return configError(s, "week settings only take start_day and end_day")
		}
		if !inRange(s.StartDay, 1, 7) || !inRange(s.EndDay, 1, 7) {
			return configError(s, "start_day and end_day must be weekdays between 1 and 7")
		}
	case types.FrequencyUnitMonth:
		if hasYearFields {
			return configError(s, "month settings only take start_day and end_day")
		}
		if !inRange(s.StartDay, 1, 31) || !inRange(s.EndDay, 1, 31) {
			return configError(s, "start_day and end_day must be days of month between 1 and 31")
		}
	case types.FrequencyUnitYear:
		if hasDayFields {
			return configError(s, "year settings only take the month and day of month fields")
		}
		if s.StartMonth == nil || s.StartDayOfMonth == nil || s.EndMonth == nil || s.EndDayOfMonth == nil {
			return configError(s, "year settings require start_month, start_day_of_month, end_month and end_day_of_month")
		}
		if !inRange(s.StartMonth, 1, 12) || !inRange(s.EndMonth, 1, 12) ||
			!inRange(s.StartDayOfMonth, 1, 31) || !inRange(s.EndDayOfMonth, 1, 31) {
			return configError(s, "year alignment fields are out of range")
		}
	}
	return nil
}

// EffectiveAt reports whether the settings apply at t
func (s *Settings) EffectiveAt(t time.Time) bool {
	if t.Before(s.EffectiveFrom) {
		return false
	}
	return s.EffectiveTo == nil || t.Before(*s.EffectiveTo)
}

// TimePeriod is a generated, persisted billing period [StartDate, EndDate)
type TimePeriod struct {
	ID         string    `db:"period_id" json:"period_id"`
	TenantID   string    `db:"tenant" json:"tenant"`
	SettingsID *string   `db:"time_period_settings_id" json:"time_period_settings_id,omitempty"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Contains reports whether t falls inside the half-open period
func (p *TimePeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}

// Overlaps reports whether the two half-open periods share any instant
func (p *TimePeriod) Overlaps(other *TimePeriod) bool {
	return p.StartDate.Before(other.EndDate) && other.StartDate.Before(p.EndDate)
}

func (p *TimePeriod) Validate() error {
	if !p.StartDate.Before(p.EndDate) {
		return ierr.NewError("time period start must be before its end").
			WithHint("Time period start date must be before its end date").
			WithReportableDetails(map[string]any{
				"start_date": types.FormatTimestamp(p.StartDate),
				"end_date":   types.FormatTimestamp(p.EndDate),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func inRange(v *int, lo, hi int) bool {
	return v == nil || (*v >= lo && *v <= hi)
}

func configError(s *Settings, msg string) error {
	return ierr.NewError(msg).
		WithHintf("Invalid time period settings: %s", msg).
		WithReportableDetails(map[string]any{
			"time_period_settings_id": s.ID,
			"frequency_unit":          s.FrequencyUnit,
		}).
		Mark(ierr.ErrConfiguration)
}
