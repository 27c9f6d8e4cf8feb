package postgres

import (
	"context"

	"github.com/psaworks/psa/internal/domain/bucket"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/types"
)

type bucketRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBucketRepository(db *postgres.DB, logger *logger.Logger) bucket.Repository {
	return &bucketRepository{db: db, logger: logger}
}

func (r *bucketRepository) GetPlanByPlanID(ctx context.Context, planID string) (*bucket.Plan, error) {
	span := StartRepositorySpan(ctx, "bucket_plan", "get_by_plan_id", map[string]interface{}{
		"plan_id": planID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT bucket_plan_id, tenant, plan_id, total_hours, overage_rate
	FROM bucket_plans
	WHERE tenant = $1 AND plan_id = $2
	ORDER BY bucket_plan_id
	LIMIT 1`

	var p bucket.Plan
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, tenantID, planID); err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Bucket plan", map[string]any{
			"plan_id": planID,
		})
	}

	SetSpanSuccess(span)
	return &p, nil
}

func (r *bucketRepository) GetUsage(ctx context.Context, bucketPlanID, companyID string, period types.BillingPeriod) (*bucket.Usage, error) {
	span := StartRepositorySpan(ctx, "bucket_usage", "get", map[string]interface{}{
		"bucket_plan_id": bucketPlanID,
		"company_id":     companyID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT usage_id, tenant, bucket_plan_id, company_id, period_start, period_end,
		hours_used, overage_hours, service_catalog_id
	FROM bucket_usage
	WHERE tenant = $1
		AND bucket_plan_id = $2
		AND company_id = $3
		AND period_start BETWEEN $4 AND $5
	ORDER BY period_start
	LIMIT 1`

	var u bucket.Usage
	err = r.db.GetQuerier(ctx).GetContext(ctx, &u, query,
		tenantID, bucketPlanID, companyID, period.Start, period.End)
	if err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Bucket usage", map[string]any{
			"bucket_plan_id": bucketPlanID,
			"company_id":     companyID,
		})
	}

	SetSpanSuccess(span)
	return &u, nil
}
