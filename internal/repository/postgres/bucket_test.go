package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketRepositoryGetPlanByPlanID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBucketRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("FROM bucket_plans").
		WithArgs(testTenant, "plan_a").
		WillReturnRows(sqlmock.NewRows([]string{
			"bucket_plan_id", "tenant", "plan_id", "total_hours", "overage_rate",
		}).AddRow("bp_1", testTenant, "plan_a", "40", "150"))

	plan, err := repo.GetPlanByPlanID(tenantCtx(), "plan_a")
	require.NoError(t, err)
	assert.True(t, plan.OverageRate.Equal(decimal.NewFromInt(150)))

	mock.ExpectQuery("FROM bucket_plans").
		WithArgs(testTenant, "plan_b").
		WillReturnRows(sqlmock.NewRows([]string{"bucket_plan_id"}))

	_, err = repo.GetPlanByPlanID(tenantCtx(), "plan_b")
	assert.True(t, ierr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBucketRepositoryGetUsage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBucketRepository(db, logger.NewNopLogger())
	period := types.BillingPeriod{Start: utcDate(2024, 1, 1), End: utcDate(2024, 2, 1)}

	mock.ExpectQuery("FROM bucket_usage").
		WithArgs(testTenant, "bp_1", "comp_1", period.Start, period.End).
		WillReturnRows(sqlmock.NewRows([]string{
			"usage_id", "tenant", "bucket_plan_id", "company_id", "period_start", "period_end",
			"hours_used", "overage_hours", "service_catalog_id",
		}).AddRow("bu_1", testTenant, "bp_1", "comp_1", period.Start, period.End, "45", "5", "svc_9"))

	u, err := repo.GetUsage(tenantCtx(), "bp_1", "comp_1", period)
	require.NoError(t, err)
	assert.True(t, u.HasOverage())
	assert.Equal(t, "svc_9", u.ServiceCatalogID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
