package postgres

import (
	"context"

	"github.com/psaworks/psa/internal/domain/servicecatalog"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/types"
)

const serviceColumns = `sc.service_id, sc.tenant, sc.service_name, sc.service_type, sc.default_rate,
	sc.category_id, sc.is_taxable, sc.tax_rate, sc.tax_region, sc.created_at, sc.updated_at`

type serviceCatalogRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewServiceCatalogRepository(db *postgres.DB, logger *logger.Logger) servicecatalog.Repository {
	return &serviceCatalogRepository{db: db, logger: logger}
}

func (r *serviceCatalogRepository) Get(ctx context.Context, id string) (*servicecatalog.Service, error) {
	span := StartRepositorySpan(ctx, "service_catalog", "get", map[string]interface{}{
		"service_id": id,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + serviceColumns + ` FROM service_catalog sc
	WHERE sc.tenant = $1 AND sc.service_id = $2`

	var s servicecatalog.Service
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, tenantID, id); err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Service", map[string]any{
			"service_id": id,
		})
	}

	SetSpanSuccess(span)
	return &s, nil
}

func (r *serviceCatalogRepository) ListFixedForPlan(ctx context.Context, filter servicecatalog.FixedPlanFilter) ([]*servicecatalog.PlanService, error) {
	span := StartRepositorySpan(ctx, "service_catalog", "list_fixed_for_plan", map[string]interface{}{
		"company_id":              filter.CompanyID,
		"company_billing_plan_id": filter.CompanyBillingPlanID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + serviceColumns + `, ps.quantity, ps.custom_rate
	FROM company_billing_plans cbp
	JOIN billing_plans bp ON bp.plan_id = cbp.plan_id AND bp.tenant = cbp.tenant
	JOIN plan_services ps ON ps.plan_id = bp.plan_id AND ps.tenant = cbp.tenant
	JOIN service_catalog sc ON sc.service_id = ps.service_id AND sc.tenant = cbp.tenant
	WHERE cbp.tenant = $1
		AND cbp.company_id = $2
		AND cbp.company_billing_plan_id = $3
		AND sc.service_type = $4
		AND sc.category_id IS NOT DISTINCT FROM $5
	ORDER BY sc.service_name, sc.service_id`

	services := []*servicecatalog.PlanService{}
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &services, query,
		tenantID,
		filter.CompanyID,
		filter.CompanyBillingPlanID,
		types.ServiceTypeFixed,
		filter.ServiceCategory,
	)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list fixed plan services")
	}

	SetSpanSuccess(span)
	return services, nil
}
