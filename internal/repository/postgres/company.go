package postgres

import (
	"context"

	"github.com/psaworks/psa/internal/domain/company"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
)

type companyRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCompanyRepository(db *postgres.DB, logger *logger.Logger) company.Repository {
	return &companyRepository{db: db, logger: logger}
}

func (r *companyRepository) Get(ctx context.Context, id string) (*company.Company, error) {
	span := StartRepositorySpan(ctx, "company", "get", map[string]interface{}{
		"company_id": id,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT company_id, tenant, company_name, COALESCE(tax_region, '') AS tax_region,
		is_tax_exempt, created_at, updated_at
	FROM companies
	WHERE tenant = $1 AND company_id = $2`

	var c company.Company
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query, tenantID, id); err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Company", map[string]any{
			"company_id": id,
		})
	}

	SetSpanSuccess(span)
	return &c, nil
}
