package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/psaworks/psa/internal/domain/tax"
	ierr "github.com/psaworks/psa/internal/errors"
)

// InMemoryTaxRateStore implements tax.Repository
type InMemoryTaxRateStore struct {
	*InMemoryStore[*tax.Rate]
	lookups atomic.Int64
}

func NewInMemoryTaxRateStore() *InMemoryTaxRateStore {
	return &InMemoryTaxRateStore{
		InMemoryStore: NewInMemoryStore[*tax.Rate](),
	}
}

func (s *InMemoryTaxRateStore) Add(ctx context.Context, r *tax.Rate) error {
	return s.InMemoryStore.Create(ctx, r.ID, r)
}

func (s *InMemoryTaxRateStore) GetForRegion(ctx context.Context, region string, asOf time.Time) (*tax.Rate, error) {
	s.lookups.Add(1)

	rates, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, r *tax.Rate, _ interface{}) bool {
			return CheckTenant(ctx, r.TenantID) &&
				r.Region == region &&
				!r.StartDate.After(asOf) &&
				(r.EndDate == nil || r.EndDate.After(asOf))
		},
		func(i, j *tax.Rate) bool {
			return i.StartDate.After(j.StartDate)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, ierr.NewErrorf("tax rate for region %s not found", region).
			WithHint("No tax rate configured for region").
			Mark(ierr.ErrNotFound)
	}
	return rates[0], nil
}

// Lookups returns how many times the store was queried
func (s *InMemoryTaxRateStore) Lookups() int {
	return int(s.lookups.Load())
}
