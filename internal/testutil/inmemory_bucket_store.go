package testutil

import (
	"context"

	"github.com/psaworks/psa/internal/domain/bucket"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

// InMemoryBucketStore implements bucket.Repository
type InMemoryBucketStore struct {
	plans *InMemoryStore[*bucket.Plan]
	usage *InMemoryStore[*bucket.Usage]
}

func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		plans: NewInMemoryStore[*bucket.Plan](),
		usage: NewInMemoryStore[*bucket.Usage](),
	}
}

func (s *InMemoryBucketStore) AddPlan(ctx context.Context, p *bucket.Plan) error {
	return s.plans.Create(ctx, p.ID, p)
}

func (s *InMemoryBucketStore) AddUsage(ctx context.Context, u *bucket.Usage) error {
	return s.usage.Create(ctx, u.ID, u)
}

func (s *InMemoryBucketStore) GetPlanByPlanID(ctx context.Context, planID string) (*bucket.Plan, error) {
	plans, err := s.plans.List(ctx, nil,
		func(ctx context.Context, p *bucket.Plan, _ interface{}) bool {
			return CheckTenant(ctx, p.TenantID) && p.PlanID == planID
		}, nil)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ierr.NewErrorf("bucket plan for plan %s not found", planID).
			WithHint("Billing plan has no bucket plan").
			Mark(ierr.ErrNotFound)
	}
	return plans[0], nil
}

func (s *InMemoryBucketStore) GetUsage(ctx context.Context, bucketPlanID, companyID string, period types.BillingPeriod) (*bucket.Usage, error) {
	rows, err := s.usage.List(ctx, nil,
		func(ctx context.Context, u *bucket.Usage, _ interface{}) bool {
			return CheckTenant(ctx, u.TenantID) &&
				u.BucketPlanID == bucketPlanID &&
				u.CompanyID == companyID &&
				!u.PeriodStart.Before(period.Start) &&
				!u.PeriodStart.After(period.End)
		},
		func(i, j *bucket.Usage) bool {
			return i.PeriodStart.Before(j.PeriodStart)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ierr.NewErrorf("bucket usage for company %s not found", companyID).
			WithHint("No bucket usage recorded for the period").
			Mark(ierr.ErrNotFound)
	}
	return rows[0], nil
}

func (s *InMemoryBucketStore) Clear() {
	s.plans.Clear()
	s.usage.Clear()
}
