package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/psaworks/psa/internal/domain/timeperiod"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/types"
)

const settingsColumns = `time_period_settings_id, tenant, frequency, frequency_unit, is_active,
	effective_from, effective_to, start_day, end_day, start_month, start_day_of_month,
	end_month, end_day_of_month, created_at, updated_at`

const timePeriodColumns = `period_id, tenant, time_period_settings_id, start_date, end_date, created_at`

type timePeriodSettingsRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTimePeriodSettingsRepository(db *postgres.DB, logger *logger.Logger) timeperiod.SettingsRepository {
	return &timePeriodSettingsRepository{db: db, logger: logger}
}

func (r *timePeriodSettingsRepository) Create(ctx context.Context, s *timeperiod.Settings) error {
	span := StartRepositorySpan(ctx, "time_period_settings", "create", map[string]interface{}{
		"time_period_settings_id": s.ID,
	})
	defer FinishSpan(span)

	query := `INSERT INTO time_period_settings (` + settingsColumns + `)
	VALUES (:time_period_settings_id, :tenant, :frequency, :frequency_unit, :is_active,
		:effective_from, :effective_to, :start_day, :end_day, :start_month, :start_day_of_month,
		:end_month, :end_day_of_month, :created_at, :updated_at)`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, s); err != nil {
		SetSpanError(span, err)
		return wrapWriteError(err, "time period setting", map[string]any{
			"time_period_settings_id": s.ID,
		})
	}

	SetSpanSuccess(span)
	return nil
}

func (r *timePeriodSettingsRepository) Get(ctx context.Context, id string) (*timeperiod.Settings, error) {
	span := StartRepositorySpan(ctx, "time_period_settings", "get", map[string]interface{}{
		"time_period_settings_id": id,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + settingsColumns + ` FROM time_period_settings
	WHERE tenant = $1 AND time_period_settings_id = $2`

	var s timeperiod.Settings
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, tenantID, id); err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Time period setting", map[string]any{
			"time_period_settings_id": id,
		})
	}

	SetSpanSuccess(span)
	return &s, nil
}

func (r *timePeriodSettingsRepository) ListActive(ctx context.Context) ([]*timeperiod.Settings, error) {
	span := StartRepositorySpan(ctx, "time_period_settings", "list_active", nil)
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + settingsColumns + ` FROM time_period_settings
	WHERE tenant = $1 AND is_active = true
	ORDER BY effective_from DESC`

	settings := []*timeperiod.Settings{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &settings, query, tenantID); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list time period settings")
	}

	SetSpanSuccess(span)
	return settings, nil
}

type timePeriodRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTimePeriodRepository(db *postgres.DB, logger *logger.Logger) timeperiod.Repository {
	return &timePeriodRepository{db: db, logger: logger}
}

const insertTimePeriod = `INSERT INTO time_periods (` + timePeriodColumns + `)
	VALUES (:period_id, :tenant, :time_period_settings_id, :start_date, :end_date, :created_at)`

func (r *timePeriodRepository) Create(ctx context.Context, p *timeperiod.TimePeriod) error {
	span := StartRepositorySpan(ctx, "time_period", "create", map[string]interface{}{
		"period_id": p.ID,
	})
	defer FinishSpan(span)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertTimePeriod, p); err != nil {
		SetSpanError(span, err)
		return wrapWriteError(err, "time period", map[string]any{
			"period_id": p.ID,
		})
	}

	SetSpanSuccess(span)
	return nil
}

func (r *timePeriodRepository) CreateMany(ctx context.Context, periods []*timeperiod.TimePeriod) error {
	if len(periods) == 0 {
		return nil
	}

	span := StartRepositorySpan(ctx, "time_period", "create_many", map[string]interface{}{
		"count": len(periods),
	})
	defer FinishSpan(span)

	r.logger.Debugw("inserting time periods", "count", len(periods))

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, insertTimePeriod, periods); err != nil {
		SetSpanError(span, err)
		return wrapWriteError(err, "time period", map[string]any{
			"count": len(periods),
		})
	}

	SetSpanSuccess(span)
	return nil
}

func (r *timePeriodRepository) Get(ctx context.Context, id string) (*timeperiod.TimePeriod, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + timePeriodColumns + ` FROM time_periods WHERE tenant = $1 AND period_id = $2`
	return r.getOne(ctx, "get", query, tenantID, id)
}

func (r *timePeriodRepository) FindByDate(ctx context.Context, t time.Time) (*timeperiod.TimePeriod, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + timePeriodColumns + ` FROM time_periods
	WHERE tenant = $1 AND start_date <= $2 AND end_date > $2
	ORDER BY start_date DESC
	LIMIT 1`
	return r.getOne(ctx, "find_by_date", query, tenantID, t.UTC())
}

func (r *timePeriodRepository) GetLatest(ctx context.Context) (*timeperiod.TimePeriod, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + timePeriodColumns + ` FROM time_periods
	WHERE tenant = $1
	ORDER BY end_date DESC
	LIMIT 1`
	return r.getOne(ctx, "get_latest", query, tenantID)
}

func (r *timePeriodRepository) getOne(ctx context.Context, op, query string, args ...interface{}) (*timeperiod.TimePeriod, error) {
	span := StartRepositorySpan(ctx, "time_period", op, nil)
	defer FinishSpan(span)

	var p timeperiod.TimePeriod
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, args...); err != nil {
		SetSpanError(span, err)
		return nil, wrapGetError(err, "Time period", map[string]any{
			"operation": op,
		})
	}

	SetSpanSuccess(span)
	return &p, nil
}

func (r *timePeriodRepository) List(ctx context.Context, filter *types.TimePeriodFilter) ([]*timeperiod.TimePeriod, error) {
	span := StartRepositorySpan(ctx, "time_period", "list", nil)
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = types.NewTimePeriodFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	query := `SELECT ` + timePeriodColumns + ` FROM time_periods WHERE tenant = $1`
	args := []interface{}{tenantID}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			args = append(args, filter.StartTime.UTC())
			query += ` AND end_date > $` + strconv.Itoa(len(args))
		}
		if filter.EndTime != nil {
			args = append(args, filter.EndTime.UTC())
			query += ` AND start_date < $` + strconv.Itoa(len(args))
		}
	}

	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}
	query += ` ORDER BY start_date ` + order

	if !filter.IsUnlimited() {
		args = append(args, filter.GetLimit(), filter.GetOffset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	periods := []*timeperiod.TimePeriod{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &periods, query, args...); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list time periods")
	}

	SetSpanSuccess(span)
	return periods, nil
}

func (r *timePeriodRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	span := StartRepositorySpan(ctx, "time_period", "list_overlapping", nil)
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + timePeriodColumns + ` FROM time_periods
	WHERE tenant = $1 AND start_date < $3 AND end_date > $2
	ORDER BY start_date ASC`

	periods := []*timeperiod.TimePeriod{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &periods, query, tenantID, start.UTC(), end.UTC()); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list overlapping time periods")
	}

	SetSpanSuccess(span)
	return periods, nil
}
