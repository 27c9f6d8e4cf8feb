package testutil

import (
	"context"

	"github.com/psaworks/psa/internal/domain/company"
	ierr "github.com/psaworks/psa/internal/errors"
)

// InMemoryCompanyStore implements company.Repository
type InMemoryCompanyStore struct {
	*InMemoryStore[*company.Company]
}

func NewInMemoryCompanyStore() *InMemoryCompanyStore {
	return &InMemoryCompanyStore{
		InMemoryStore: NewInMemoryStore[*company.Company](),
	}
}

func (s *InMemoryCompanyStore) Add(ctx context.Context, c *company.Company) error {
	return s.InMemoryStore.Create(ctx, c.ID, c)
}

func (s *InMemoryCompanyStore) Get(ctx context.Context, id string) (*company.Company, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenant(ctx, c.TenantID) {
		return nil, ierr.NewErrorf("company %s not found", id).
			WithHint("Company was not found").
			WithReportableDetails(map[string]any{"company_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}
