package postgres

import (
	"context"

	"github.com/psaworks/psa/internal/domain/discount"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/types"
)

type discountRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDiscountRepository(db *postgres.DB, logger *logger.Logger) discount.Repository {
	return &discountRepository{db: db, logger: logger}
}

func (r *discountRepository) ListActiveForCompany(ctx context.Context, companyID string, period types.BillingPeriod) ([]*discount.Discount, error) {
	span := StartRepositorySpan(ctx, "discount", "list_active_for_company", map[string]interface{}{
		"company_id": companyID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT d.discount_id, d.tenant, d.discount_name, d.discount_type, d.value,
		d.is_active, d.start_date, d.end_date
	FROM discounts d
	JOIN plan_discounts pd ON pd.discount_id = d.discount_id AND pd.tenant = d.tenant
	JOIN company_billing_plans cbp
		ON cbp.plan_id = pd.plan_id AND cbp.company_id = pd.company_id AND cbp.tenant = d.tenant
	WHERE d.tenant = $1
		AND cbp.company_id = $2
		AND d.is_active = true
		AND d.start_date <= $3
		AND (d.end_date IS NULL OR d.end_date >= $4)
	ORDER BY d.start_date, d.discount_id`

	discounts := []*discount.Discount{}
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &discounts, query,
		tenantID, companyID, period.End, period.Start)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list discounts")
	}

	SetSpanSuccess(span)
	return discounts, nil
}
