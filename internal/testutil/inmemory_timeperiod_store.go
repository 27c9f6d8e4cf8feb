package testutil

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/domain/timeperiod"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

// InMemoryTimePeriodSettingsStore implements timeperiod.SettingsRepository
type InMemoryTimePeriodSettingsStore struct {
	*InMemoryStore[*timeperiod.Settings]
}

func NewInMemoryTimePeriodSettingsStore() *InMemoryTimePeriodSettingsStore {
	return &InMemoryTimePeriodSettingsStore{
		InMemoryStore: NewInMemoryStore[*timeperiod.Settings](),
	}
}

func (s *InMemoryTimePeriodSettingsStore) Create(ctx context.Context, settings *timeperiod.Settings) error {
	return s.InMemoryStore.Create(ctx, settings.ID, settings)
}

func (s *InMemoryTimePeriodSettingsStore) Get(ctx context.Context, id string) (*timeperiod.Settings, error) {
	settings, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenant(ctx, settings.TenantID) {
		return nil, ierr.NewErrorf("time period settings %s not found", id).
			WithHint("Time period settings were not found").
			Mark(ierr.ErrNotFound)
	}
	return settings, nil
}

func (s *InMemoryTimePeriodSettingsStore) ListActive(ctx context.Context) ([]*timeperiod.Settings, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, settings *timeperiod.Settings, _ interface{}) bool {
			return CheckTenant(ctx, settings.TenantID) && settings.IsActive
		},
		func(i, j *timeperiod.Settings) bool {
			return i.EffectiveFrom.After(j.EffectiveFrom)
		},
	)
}

// InMemoryTimePeriodStore implements timeperiod.Repository
type InMemoryTimePeriodStore struct {
	*InMemoryStore[*timeperiod.TimePeriod]
}

func NewInMemoryTimePeriodStore() *InMemoryTimePeriodStore {
	return &InMemoryTimePeriodStore{
		InMemoryStore: NewInMemoryStore[*timeperiod.TimePeriod](),
	}
}

func (s *InMemoryTimePeriodStore) Create(ctx context.Context, period *timeperiod.TimePeriod) error {
	return s.InMemoryStore.Create(ctx, period.ID, period)
}

func (s *InMemoryTimePeriodStore) CreateMany(ctx context.Context, periods []*timeperiod.TimePeriod) error {
	for _, p := range periods {
		if err := s.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryTimePeriodStore) Get(ctx context.Context, id string) (*timeperiod.TimePeriod, error) {
	period, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenant(ctx, period.TenantID) {
		return nil, notFoundPeriod()
	}
	return period, nil
}

func (s *InMemoryTimePeriodStore) FindByDate(ctx context.Context, t time.Time) (*timeperiod.TimePeriod, error) {
	periods, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *timeperiod.TimePeriod, _ interface{}) bool {
			return CheckTenant(ctx, p.TenantID) && p.Contains(t)
		},
		func(i, j *timeperiod.TimePeriod) bool {
			return i.StartDate.After(j.StartDate)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, notFoundPeriod()
	}
	return periods[0], nil
}

func (s *InMemoryTimePeriodStore) GetLatest(ctx context.Context) (*timeperiod.TimePeriod, error) {
	periods, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *timeperiod.TimePeriod, _ interface{}) bool {
			return CheckTenant(ctx, p.TenantID)
		},
		func(i, j *timeperiod.TimePeriod) bool {
			return i.EndDate.After(j.EndDate)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, notFoundPeriod()
	}
	return periods[0], nil
}

func (s *InMemoryTimePeriodStore) List(ctx context.Context, filter *types.TimePeriodFilter) ([]*timeperiod.TimePeriod, error) {
	if filter == nil {
		filter = types.NewTimePeriodFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	asc := filter.GetOrder() == types.OrderAsc

	return s.InMemoryStore.List(ctx, filter,
		func(ctx context.Context, p *timeperiod.TimePeriod, _ interface{}) bool {
			if !CheckTenant(ctx, p.TenantID) {
				return false
			}
			if tr := filter.TimeRangeFilter; tr != nil {
				if tr.StartTime != nil && !p.EndDate.After(*tr.StartTime) {
					return false
				}
				if tr.EndTime != nil && !p.StartDate.Before(*tr.EndTime) {
					return false
				}
			}
			return true
		},
		func(i, j *timeperiod.TimePeriod) bool {
			if asc {
				return i.StartDate.Before(j.StartDate)
			}
			return i.StartDate.After(j.StartDate)
		},
	)
}

func (s *InMemoryTimePeriodStore) ListOverlapping(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	candidate := &timeperiod.TimePeriod{StartDate: start, EndDate: end}
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *timeperiod.TimePeriod, _ interface{}) bool {
			return CheckTenant(ctx, p.TenantID) && p.Overlaps(candidate)
		},
		func(i, j *timeperiod.TimePeriod) bool {
			return i.StartDate.Before(j.StartDate)
		},
	)
}

func notFoundPeriod() error {
	return ierr.NewError("time period not found").
		WithHint("Time period was not found").
		Mark(ierr.ErrNotFound)
}
