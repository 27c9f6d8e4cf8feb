package testutil

import (
	"context"

	"github.com/psaworks/psa/internal/domain/servicecatalog"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
)

// planServiceRecord attaches a plan service to a company billing plan
type planServiceRecord struct {
	key                  string
	companyID            string
	companyBillingPlanID string
	service              *servicecatalog.PlanService
}

// InMemoryServiceCatalogStore implements servicecatalog.Repository
type InMemoryServiceCatalogStore struct {
	*InMemoryStore[*servicecatalog.Service]
	planServices *InMemoryStore[*planServiceRecord]
}

func NewInMemoryServiceCatalogStore() *InMemoryServiceCatalogStore {
	return &InMemoryServiceCatalogStore{
		InMemoryStore: NewInMemoryStore[*servicecatalog.Service](),
		planServices:  NewInMemoryStore[*planServiceRecord](),
	}
}

func (s *InMemoryServiceCatalogStore) AddService(ctx context.Context, svc *servicecatalog.Service) error {
	return s.InMemoryStore.Create(ctx, svc.ID, svc)
}

// AddPlanService attaches svc to the plan behind a company billing plan
func (s *InMemoryServiceCatalogStore) AddPlanService(ctx context.Context, companyID, companyBillingPlanID string, svc *servicecatalog.PlanService) error {
	key := companyBillingPlanID + "/" + svc.ID
	return s.planServices.Create(ctx, key, &planServiceRecord{
		key:                  key,
		companyID:            companyID,
		companyBillingPlanID: companyBillingPlanID,
		service:              svc,
	})
}

func (s *InMemoryServiceCatalogStore) Get(ctx context.Context, id string) (*servicecatalog.Service, error) {
	svc, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenant(ctx, svc.TenantID) {
		return nil, ierr.NewErrorf("service %s not found", id).
			WithHint("Service was not found").
			Mark(ierr.ErrNotFound)
	}
	return svc, nil
}

func (s *InMemoryServiceCatalogStore) ListFixedForPlan(ctx context.Context, filter servicecatalog.FixedPlanFilter) ([]*servicecatalog.PlanService, error) {
	records, err := s.planServices.List(ctx, nil,
		func(ctx context.Context, r *planServiceRecord, _ interface{}) bool {
			return CheckTenant(ctx, r.service.TenantID) &&
				r.companyID == filter.CompanyID &&
				r.companyBillingPlanID == filter.CompanyBillingPlanID &&
				r.service.ServiceType == types.ServiceTypeFixed &&
				sameCategory(r.service.CategoryID, filter.ServiceCategory)
		},
		func(i, j *planServiceRecord) bool {
			return i.key < j.key
		},
	)
	if err != nil {
		return nil, err
	}

	services := make([]*servicecatalog.PlanService, 0, len(records))
	for _, r := range records {
		services = append(services, r.service)
	}
	return services, nil
}

func (s *InMemoryServiceCatalogStore) Clear() {
	s.InMemoryStore.Clear()
	s.planServices.Clear()
}
