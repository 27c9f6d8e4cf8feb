package postgres

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/domain/tax"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
)

type taxRateRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTaxRateRepository(db *postgres.DB, logger *logger.Logger) tax.Repository {
	return &taxRateRepository{db: db, logger: logger}
}

func (r *taxRateRepository) GetForRegion(ctx context.Context, region string, asOf time.Time) (*tax.Rate, error) {
	span := StartRepositorySpan(ctx, "tax_rate", "get_for_region", map[string]interface{}{
		"region": region,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT tax_rate_id, tenant, region, tax_percentage, COALESCE(description, '') AS description,
		start_date, end_date
	FROM tax_rates
	WHERE tenant = $1
		AND region = $2
		AND start_date <= $3
		AND (end_date IS NULL OR end_date > $3)
	ORDER BY start_date DESC
	LIMIT 1`

	var rate tax.Rate
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &rate, query, tenantID, region, asOf.UTC()); err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Tax rate", map[string]any{
			"region": region,
		})
	}

	SetSpanSuccess(span)
	return &rate, nil
}
