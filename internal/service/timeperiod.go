package service

import (
	"context"
	"sort"
	"time"

	"github.com/psaworks/psa/internal/api/dto"
	"github.com/psaworks/psa/internal/domain/timeperiod"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/metrics"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
)

type TimePeriodService interface {
	// GenerateTimePeriods cuts periods for [start, end) without persisting them
	GenerateTimePeriods(settings []*timeperiod.Settings, start, end time.Time) ([]*timeperiod.TimePeriod, error)
	// PreviewTimePeriods generates from the tenant's active settings without persisting
	PreviewTimePeriods(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error)
	GenerateAndSaveTimePeriods(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error)
	GetCurrentTimePeriod(ctx context.Context) (*timeperiod.TimePeriod, error)
	GetLatestTimePeriod(ctx context.Context) (*timeperiod.TimePeriod, error)
	ListTimePeriods(ctx context.Context, filter *types.TimePeriodFilter) ([]*timeperiod.TimePeriod, error)
	CreateTimePeriod(ctx context.Context, req dto.CreateTimePeriodRequest) (*timeperiod.TimePeriod, error)
}

type timePeriodService struct {
	ServiceParams
}

func NewTimePeriodService(params ServiceParams) TimePeriodService {
	return &timePeriodService{ServiceParams: params}
}

func (s *timePeriodService) GenerateTimePeriods(settings []*timeperiod.Settings, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	periods, err := GenerateTimePeriods(settings, start, end)
	if err != nil {
		return nil, err
	}
	s.logOverlaps(periods)
	return periods, nil
}

func (s *timePeriodService) PreviewTimePeriods(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	var settings []*timeperiod.Settings
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		settings, err = s.TimePeriodSettingsRepo.ListActive(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GenerateTimePeriods(settings, start, end)
}

func (s *timePeriodService) GenerateAndSaveTimePeriods(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	var periods []*timeperiod.TimePeriod

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		settings, err := s.TimePeriodSettingsRepo.ListActive(ctx)
		if err != nil {
			return err
		}

		periods, err = s.GenerateTimePeriods(settings, start, end)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		tenantID := types.GetTenantID(ctx)
		for _, p := range periods {
			p.TenantID = tenantID
			p.CreatedAt = now
		}
		return s.TimePeriodRepo.CreateMany(ctx, periods)
	})
	if err != nil {
		s.Logger.Errorw("failed to generate and save time periods",
			"start_date", types.FormatTimestamp(start),
			"end_date", types.FormatTimestamp(end),
			"error", err,
		)
		return nil, err
	}

	metrics.AddTimePeriodsGenerated(len(periods))
	s.Logger.Infow("generated time periods",
		"count", len(periods),
		"start_date", types.FormatTimestamp(start),
		"end_date", types.FormatTimestamp(end),
	)
	return periods, nil
}

func (s *timePeriodService) GetCurrentTimePeriod(ctx context.Context) (*timeperiod.TimePeriod, error) {
	var period *timeperiod.TimePeriod
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		period, err = s.TimePeriodRepo.FindByDate(ctx, time.Now().UTC())
		return err
	})
	return period, err
}

func (s *timePeriodService) GetLatestTimePeriod(ctx context.Context) (*timeperiod.TimePeriod, error) {
	var period *timeperiod.TimePeriod
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		period, err = s.TimePeriodRepo.GetLatest(ctx)
		return err
	})
	return period, err
}

func (s *timePeriodService) ListTimePeriods(ctx context.Context, filter *types.TimePeriodFilter) ([]*timeperiod.TimePeriod, error) {
	if filter == nil {
		filter = types.NewTimePeriodFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var periods []*timeperiod.TimePeriod
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		periods, err = s.TimePeriodRepo.List(ctx, filter)
		return err
	})
	return periods, err
}

func (s *timePeriodService) CreateTimePeriod(ctx context.Context, req dto.CreateTimePeriodRequest) (*timeperiod.TimePeriod, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	period, err := req.ToTimePeriod(ctx)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.TimePeriodRepo.ListOverlapping(ctx, period.StartDate, period.EndDate)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ierr.NewError("time period overlaps an existing period").
				WithHint("The new time period overlaps an existing one").
				WithReportableDetails(map[string]any{
					"start_date":  types.FormatTimestamp(period.StartDate),
					"end_date":    types.FormatTimestamp(period.EndDate),
					"overlapping": lo.Map(existing, func(p *timeperiod.TimePeriod, _ int) string { return p.ID }),
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		return s.TimePeriodRepo.Create(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	return period, nil
}

func (s *timePeriodService) logOverlaps(periods []*timeperiod.TimePeriod) {
	for _, o := range FindOverlappingPeriods(periods) {
		s.Logger.Warnw("generated time periods overlap",
			"first_period_id", o.First.ID,
			"first_settings_id", lo.FromPtr(o.First.SettingsID),
			"second_period_id", o.Second.ID,
			"second_settings_id", lo.FromPtr(o.Second.SettingsID),
			"first_start", types.FormatTimestamp(o.First.StartDate),
			"second_start", types.FormatTimestamp(o.Second.StartDate),
		)
	}
}

// GenerateTimePeriods returns the periods every active setting cuts out of
// [start, end), clipped to each setting's effective range and ordered by start
// date. Periods of different settings may overlap, they are all kept.
func GenerateTimePeriods(settings []*timeperiod.Settings, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	window, err := types.NewBillingPeriod(start, end)
	if err != nil {
		return nil, err
	}

	periods := make([]*timeperiod.TimePeriod, 0)
	for _, setting := range settings {
		if setting == nil || !setting.IsActive {
			continue
		}
		if err := setting.Validate(); err != nil {
			return nil, err
		}

		generated, err := generateForSetting(setting, window)
		if err != nil {
			return nil, err
		}
		periods = append(periods, generated...)
	}

	sort.SliceStable(periods, func(i, j int) bool {
		if periods[i].StartDate.Equal(periods[j].StartDate) {
			return periods[i].EndDate.Before(periods[j].EndDate)
		}
		return periods[i].StartDate.Before(periods[j].StartDate)
	})
	return periods, nil
}

func generateForSetting(setting *timeperiod.Settings, window types.BillingPeriod) ([]*timeperiod.TimePeriod, error) {
	current := window.Start
	if setting.EffectiveFrom.After(current) {
		current = setting.EffectiveFrom.UTC()
	}

	if setting.StartDay != nil {
		switch setting.FrequencyUnit {
		case types.FrequencyUnitWeek:
			current = types.AlignToWeekday(current, *setting.StartDay)
		case types.FrequencyUnitMonth:
			current = types.AlignToMonthDay(current, *setting.StartDay)
		}
	}

	var settingsID *string
	if setting.ID != "" {
		settingsID = lo.ToPtr(setting.ID)
	}

	periods := make([]*timeperiod.TimePeriod, 0)
	for current.Before(window.End) {
		if setting.EffectiveTo != nil && current.After(*setting.EffectiveTo) {
			break
		}

		periodStart, periodEnd := nextBoundaries(setting, current)
		if !periodEnd.After(periodStart) {
			return nil, ierr.NewError("time period settings produce an empty period").
				WithHint("Time period settings must produce periods that end after they start").
				WithReportableDetails(map[string]any{
					"time_period_settings_id": setting.ID,
					"start_date":              types.FormatTimestamp(periodStart),
				}).
				Mark(ierr.ErrConfiguration)
		}

		if periodStart.After(window.End) || periodEnd.After(window.End) {
			break
		}
		if setting.EffectiveTo != nil && (periodStart.After(*setting.EffectiveTo) || periodEnd.After(*setting.EffectiveTo)) {
			break
		}

		periods = append(periods, &timeperiod.TimePeriod{
			ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TIME_PERIOD),
			TenantID:   setting.TenantID,
			SettingsID: settingsID,
			StartDate:  types.NearestMidnight(periodStart),
			EndDate:    types.NearestMidnight(periodEnd),
		})

		current = periodEnd
	}
	return periods, nil
}

// nextBoundaries returns the half-open period starting at current. Configured
// end days are inclusive, so the boundary lands on the day after them.
func nextBoundaries(setting *timeperiod.Settings, current time.Time) (time.Time, time.Time) {
	f := setting.Frequency

	switch setting.FrequencyUnit {
	case types.FrequencyUnitWeek:
		if setting.EndDay == nil {
			return current, types.AddDays(current, f*7)
		}
		last := types.AlignToWeekday(types.AddDays(current, f*7-1), *setting.EndDay)
		return current, types.AddDays(types.StartOfDay(last), 1)

	case types.FrequencyUnitMonth:
		if setting.EndDay == nil {
			return current, types.FirstDayOfMonthAfter(current, f)
		}
		last := types.AlignToMonthDay(types.AddMonths(current, f-1), *setting.EndDay)
		return current, types.AddDays(last, 1)

	case types.FrequencyUnitYear:
		return yearBoundaries(setting, current)

	default:
		return current, types.AddDays(current, f)
	}
}

// yearBoundaries anchors the period on the configured start month and day of
// the year current falls in, moving to the next year when that anchor has
// already passed. The period runs through the configured end month and day of
// the start year plus frequency, or one year later when that would precede
// the start.
func yearBoundaries(setting *timeperiod.Settings, current time.Time) (time.Time, time.Time) {
	year := current.UTC().Year()
	start := types.MonthDayOf(year, time.Month(*setting.StartMonth), *setting.StartDayOfMonth)
	if start.Before(types.StartOfDay(current)) {
		year++
		start = types.MonthDayOf(year, time.Month(*setting.StartMonth), *setting.StartDayOfMonth)
	}

	endYear := year + setting.Frequency
	last := types.MonthDayOf(endYear, time.Month(*setting.EndMonth), *setting.EndDayOfMonth)
	if last.Before(start) {
		last = types.MonthDayOf(endYear+1, time.Month(*setting.EndMonth), *setting.EndDayOfMonth)
	}
	return start, types.AddDays(last, 1)
}

// PeriodOverlap is a pair of periods sharing at least one instant
type PeriodOverlap struct {
	First  *timeperiod.TimePeriod
	Second *timeperiod.TimePeriod
}

// FindOverlappingPeriods reports every overlapping pair, earliest start first
func FindOverlappingPeriods(periods []*timeperiod.TimePeriod) []PeriodOverlap {
	sorted := make([]*timeperiod.TimePeriod, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	overlaps := make([]PeriodOverlap, 0)
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if !sorted[j].StartDate.Before(sorted[i].EndDate) {
				break
			}
			overlaps = append(overlaps, PeriodOverlap{First: sorted[i], Second: sorted[j]})
		}
	}
	return overlaps
}
