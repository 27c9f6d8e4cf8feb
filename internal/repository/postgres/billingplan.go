package postgres

import (
	"context"

	"github.com/psaworks/psa/internal/domain/billingplan"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/types"
)

type billingPlanRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBillingPlanRepository(db *postgres.DB, logger *logger.Logger) billingplan.Repository {
	return &billingPlanRepository{db: db, logger: logger}
}

func (r *billingPlanRepository) ListActiveForPeriod(ctx context.Context, companyID string, period types.BillingPeriod) ([]*billingplan.CompanyBillingPlan, error) {
	span := StartRepositorySpan(ctx, "company_billing_plan", "list_active_for_period", map[string]interface{}{
		"company_id": companyID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT company_billing_plan_id, tenant, company_id, plan_id, service_category,
		start_date, end_date, is_active
	FROM company_billing_plans
	WHERE tenant = $1
		AND company_id = $2
		AND is_active = true
		AND start_date <= $3
		AND (end_date >= $4 OR end_date IS NULL)
	ORDER BY start_date DESC`

	plans := []*billingplan.CompanyBillingPlan{}
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &plans, query, tenantID, companyID, period.End, period.Start)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list company billing plans")
	}

	SetSpanSuccess(span)
	return plans, nil
}

func (r *billingPlanRepository) GetBillingCycle(ctx context.Context, companyID string) (*billingplan.CompanyBillingCycle, error) {
	span := StartRepositorySpan(ctx, "company_billing_cycle", "get", map[string]interface{}{
		"company_id": companyID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT billing_cycle_id, tenant, company_id, billing_cycle, effective_date
	FROM company_billing_cycles
	WHERE tenant = $1 AND company_id = $2
	ORDER BY effective_date DESC
	LIMIT 1`

	var cycle billingplan.CompanyBillingCycle
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &cycle, query, tenantID, companyID); err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Company billing cycle", map[string]any{
			"company_id": companyID,
		})
	}

	SetSpanSuccess(span)
	return &cycle, nil
}
