package postgres

import (
	"context"

	"github.com/psaworks/psa/internal/domain/usage"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
)

type usageRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewUsageRepository(db *postgres.DB, logger *logger.Logger) usage.Repository {
	return &usageRepository{db: db, logger: logger}
}

func (r *usageRepository) ListForPlan(ctx context.Context, filter usage.PlanFilter) ([]*usage.Record, error) {
	span := StartRepositorySpan(ctx, "usage_tracking", "list_for_plan", map[string]interface{}{
		"company_id": filter.CompanyID,
		"plan_id":    filter.PlanID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ut.usage_id, ut.tenant, ut.company_id, ut.service_id, ut.usage_date,
		ut.quantity, ut.tax_region, sc.service_name, sc.default_rate, ps.custom_rate
	FROM usage_tracking ut
	JOIN service_catalog sc ON sc.service_id = ut.service_id AND sc.tenant = ut.tenant
	JOIN plan_services ps ON ps.service_id = sc.service_id AND ps.tenant = ut.tenant
	WHERE ut.tenant = $1
		AND ut.company_id = $2
		AND ut.usage_date BETWEEN $3 AND $4
		AND sc.category_id IS NOT DISTINCT FROM $5
		AND ps.plan_id = $6
	ORDER BY ut.usage_date, ut.usage_id`

	records := []*usage.Record{}
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &records, query,
		tenantID,
		filter.CompanyID,
		filter.Period.Start,
		filter.Period.End,
		filter.ServiceCategory,
		filter.PlanID,
	)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list usage records")
	}

	SetSpanSuccess(span)
	return records, nil
}
