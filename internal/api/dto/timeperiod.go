package dto

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/domain/timeperiod"
	"github.com/psaworks/psa/internal/types"
	"github.com/psaworks/psa/internal/validator"
	"github.com/samber/lo"
)

// TimePeriodSettingsRequest is an ad hoc period setting used to preview generation
type TimePeriodSettingsRequest struct {
	Frequency     int                 `json:"frequency" validate:"required,min=1"`
	FrequencyUnit types.FrequencyUnit `json:"frequency_unit" validate:"required"`
	EffectiveFrom string              `json:"effective_from" validate:"required,utc_timestamp"`
	EffectiveTo   *string             `json:"effective_to,omitempty" validate:"omitempty,utc_timestamp"`

	StartDay        *int `json:"start_day,omitempty"`
	EndDay          *int `json:"end_day,omitempty"`
	StartMonth      *int `json:"start_month,omitempty"`
	StartDayOfMonth *int `json:"start_day_of_month,omitempty"`
	EndMonth        *int `json:"end_month,omitempty"`
	EndDayOfMonth   *int `json:"end_day_of_month,omitempty"`
}

func (r *TimePeriodSettingsRequest) ToSettings(ctx context.Context) (*timeperiod.Settings, error) {
	from, err := types.ParseTimestamp(r.EffectiveFrom)
	if err != nil {
		return nil, err
	}

	var to *time.Time
	if r.EffectiveTo != nil {
		parsed, err := types.ParseTimestamp(*r.EffectiveTo)
		if err != nil {
			return nil, err
		}
		to = &parsed
	}

	now := time.Now().UTC()
	s := &timeperiod.Settings{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TIME_PERIOD_SETTINGS),
		TenantID:        types.GetTenantID(ctx),
		Frequency:       r.Frequency,
		FrequencyUnit:   r.FrequencyUnit,
		IsActive:        true,
		EffectiveFrom:   from,
		EffectiveTo:     to,
		StartDay:        r.StartDay,
		EndDay:          r.EndDay,
		StartMonth:      r.StartMonth,
		StartDayOfMonth: r.StartDayOfMonth,
		EndMonth:        r.EndMonth,
		EndDayOfMonth:   r.EndDayOfMonth,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// GenerateTimePeriodsRequest previews or persists periods for [start_date, end_date).
// Without settings the tenant's active settings are used.
type GenerateTimePeriodsRequest struct {
	StartDate string                      `json:"start_date" validate:"required,utc_timestamp"`
	EndDate   string                      `json:"end_date" validate:"required,utc_timestamp"`
	Settings  []TimePeriodSettingsRequest `json:"settings,omitempty" validate:"omitempty,dive"`
}

func (r *GenerateTimePeriodsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := parsePeriod(r.StartDate, r.EndDate)
	return err
}

// Window returns the generation window
func (r *GenerateTimePeriodsRequest) Window() (types.BillingPeriod, error) {
	return parsePeriod(r.StartDate, r.EndDate)
}

type CreateTimePeriodRequest struct {
	StartDate string `json:"start_date" validate:"required,utc_timestamp"`
	EndDate   string `json:"end_date" validate:"required,utc_timestamp"`
}

func (r *CreateTimePeriodRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateTimePeriodRequest) ToTimePeriod(ctx context.Context) (*timeperiod.TimePeriod, error) {
	start, err := types.ParseTimestamp(r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := types.ParseTimestamp(r.EndDate)
	if err != nil {
		return nil, err
	}

	p := &timeperiod.TimePeriod{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TIME_PERIOD),
		TenantID:  types.GetTenantID(ctx),
		StartDate: start,
		EndDate:   end,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

type TimePeriodResponse struct {
	PeriodID   string  `json:"period_id"`
	SettingsID *string `json:"time_period_settings_id,omitempty"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
}

func NewTimePeriodResponse(p *timeperiod.TimePeriod) *TimePeriodResponse {
	return &TimePeriodResponse{
		PeriodID:   p.ID,
		SettingsID: p.SettingsID,
		StartDate:  types.FormatTimestamp(p.StartDate),
		EndDate:    types.FormatTimestamp(p.EndDate),
	}
}

type ListTimePeriodsResponse struct {
	Items []*TimePeriodResponse `json:"items"`
}

func NewListTimePeriodsResponse(periods []*timeperiod.TimePeriod) *ListTimePeriodsResponse {
	return &ListTimePeriodsResponse{
		Items: lo.Map(periods, func(p *timeperiod.TimePeriod, _ int) *TimePeriodResponse {
			return NewTimePeriodResponse(p)
		}),
	}
}
