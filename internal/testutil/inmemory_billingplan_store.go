package testutil

import (
	"context"
	"sync"

	"github.com/psaworks/psa/internal/domain/billingplan"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

// InMemoryBillingPlanStore implements billingplan.Repository
type InMemoryBillingPlanStore struct {
	*InMemoryStore[*billingplan.CompanyBillingPlan]
	cycles *InMemoryStore[*billingplan.CompanyBillingCycle]

	mu          sync.Mutex
	cycleLookup int
}

func NewInMemoryBillingPlanStore() *InMemoryBillingPlanStore {
	return &InMemoryBillingPlanStore{
		InMemoryStore: NewInMemoryStore[*billingplan.CompanyBillingPlan](),
		cycles:        NewInMemoryStore[*billingplan.CompanyBillingCycle](),
	}
}

func (s *InMemoryBillingPlanStore) AddPlan(ctx context.Context, p *billingplan.CompanyBillingPlan) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryBillingPlanStore) AddCycle(ctx context.Context, c *billingplan.CompanyBillingCycle) error {
	return s.cycles.Create(ctx, c.ID, c)
}

func (s *InMemoryBillingPlanStore) ListActiveForPeriod(ctx context.Context, companyID string, period types.BillingPeriod) ([]*billingplan.CompanyBillingPlan, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *billingplan.CompanyBillingPlan, _ interface{}) bool {
			return CheckTenant(ctx, p.TenantID) && p.CompanyID == companyID && p.CoversPeriod(period)
		},
		func(i, j *billingplan.CompanyBillingPlan) bool {
			return i.StartDate.After(j.StartDate)
		},
	)
}

func (s *InMemoryBillingPlanStore) GetBillingCycle(ctx context.Context, companyID string) (*billingplan.CompanyBillingCycle, error) {
	s.mu.Lock()
	s.cycleLookup++
	s.mu.Unlock()

	cycles, err := s.cycles.List(ctx, nil,
		func(ctx context.Context, c *billingplan.CompanyBillingCycle, _ interface{}) bool {
			return CheckTenant(ctx, c.TenantID) && c.CompanyID == companyID
		},
		func(i, j *billingplan.CompanyBillingCycle) bool {
			return i.EffectiveDate.After(j.EffectiveDate)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return nil, ierr.NewErrorf("billing cycle for company %s not found", companyID).
			WithHint("Company has no billing cycle").
			Mark(ierr.ErrNotFound)
	}
	return cycles[0], nil
}

// CycleLookups returns how many times the billing cycle was read
func (s *InMemoryBillingPlanStore) CycleLookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycleLookup
}

func (s *InMemoryBillingPlanStore) Clear() {
	s.InMemoryStore.Clear()
	s.cycles.Clear()
}
