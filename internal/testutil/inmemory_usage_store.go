package testutil

import (
	"context"

	"github.com/psaworks/psa/internal/domain/usage"
	"github.com/samber/lo"
)

// UsageRecord is a stored usage row with its service's plan and category
type UsageRecord struct {
	Record     usage.Record
	PlanID     string
	CategoryID *string
}

// InMemoryUsageStore implements usage.Repository
type InMemoryUsageStore struct {
	*InMemoryStore[*UsageRecord]
}

func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		InMemoryStore: NewInMemoryStore[*UsageRecord](),
	}
}

func (s *InMemoryUsageStore) Add(ctx context.Context, r *UsageRecord) error {
	return s.InMemoryStore.Create(ctx, r.Record.ID, r)
}

func (s *InMemoryUsageStore) ListForPlan(ctx context.Context, filter usage.PlanFilter) ([]*usage.Record, error) {
	records, err := s.InMemoryStore.List(ctx, filter,
		func(ctx context.Context, r *UsageRecord, _ interface{}) bool {
			return CheckTenant(ctx, r.Record.TenantID) &&
				r.Record.CompanyID == filter.CompanyID &&
				r.PlanID == filter.PlanID &&
				sameCategory(r.CategoryID, filter.ServiceCategory) &&
				!r.Record.UsageDate.Before(filter.Period.Start) &&
				!r.Record.UsageDate.After(filter.Period.End)
		},
		func(i, j *UsageRecord) bool {
			return i.Record.UsageDate.Before(j.Record.UsageDate)
		},
	)
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(r *UsageRecord, _ int) *usage.Record {
		rec := r.Record
		return &rec
	}), nil
}
