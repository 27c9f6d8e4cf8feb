package testutil

import (
	"context"

	"github.com/psaworks/psa/internal/domain/discount"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
)

// DiscountRecord is a discount attached to one of the company's plans
type DiscountRecord struct {
	Discount  discount.Discount
	CompanyID string
}

// InMemoryDiscountStore implements discount.Repository
type InMemoryDiscountStore struct {
	*InMemoryStore[*DiscountRecord]
}

func NewInMemoryDiscountStore() *InMemoryDiscountStore {
	return &InMemoryDiscountStore{
		InMemoryStore: NewInMemoryStore[*DiscountRecord](),
	}
}

func (s *InMemoryDiscountStore) Add(ctx context.Context, r *DiscountRecord) error {
	return s.InMemoryStore.Create(ctx, r.Discount.ID, r)
}

func (s *InMemoryDiscountStore) ListActiveForCompany(ctx context.Context, companyID string, period types.BillingPeriod) ([]*discount.Discount, error) {
	records, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, r *DiscountRecord, _ interface{}) bool {
			d := r.Discount
			return CheckTenant(ctx, d.TenantID) &&
				r.CompanyID == companyID &&
				d.IsActive &&
				!d.StartDate.After(period.End) &&
				(d.EndDate == nil || !d.EndDate.Before(period.Start))
		},
		func(i, j *DiscountRecord) bool {
			return i.Discount.ID < j.Discount.ID
		},
	)
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(r *DiscountRecord, _ int) *discount.Discount {
		d := r.Discount
		return &d
	}), nil
}
