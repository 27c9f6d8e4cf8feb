package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/psaworks/psa/internal/domain/timeperiod"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timePeriodRowColumns = []string{
	"period_id", "tenant", "time_period_settings_id", "start_date", "end_date", "created_at",
}

func TestTimePeriodRepositoryCreateMany(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimePeriodRepository(db, logger.NewNopLogger())
	now := time.Now().UTC()

	periods := []*timeperiod.TimePeriod{
		{ID: "tp_1", TenantID: testTenant, StartDate: utcDate(2024, 1, 1), EndDate: utcDate(2024, 1, 8), CreatedAt: now},
		{ID: "tp_2", TenantID: testTenant, StartDate: utcDate(2024, 1, 8), EndDate: utcDate(2024, 1, 15), CreatedAt: now},
	}

	mock.ExpectExec("INSERT INTO time_periods").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.CreateMany(tenantCtx(), periods))
	require.NoError(t, repo.CreateMany(tenantCtx(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimePeriodRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimePeriodRepository(db, logger.NewNopLogger())

	mock.ExpectExec("INSERT INTO time_periods").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(tenantCtx(), &timeperiod.TimePeriod{
		ID:        "tp_1",
		TenantID:  testTenant,
		StartDate: utcDate(2024, 1, 1),
		EndDate:   utcDate(2024, 2, 1),
	})
	assert.True(t, ierr.IsAlreadyExists(err))
}

func TestTimePeriodRepositoryFindByDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimePeriodRepository(db, logger.NewNopLogger())
	at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("start_date <= \\$2 AND end_date > \\$2").
		WithArgs(testTenant, at).
		WillReturnRows(sqlmock.NewRows(timePeriodRowColumns).
			AddRow("tp_1", testTenant, "tps_1", utcDate(2024, 1, 1), utcDate(2024, 2, 1), utcDate(2023, 12, 1)))

	p, err := repo.FindByDate(tenantCtx(), at)
	require.NoError(t, err)
	assert.Equal(t, "tp_1", p.ID)
	require.NotNil(t, p.SettingsID)
	assert.Equal(t, "tps_1", *p.SettingsID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimePeriodRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimePeriodRepository(db, logger.NewNopLogger())
	from := utcDate(2024, 1, 1)

	filter := types.NewTimePeriodFilter()
	filter.TimeRangeFilter = &types.TimeRangeFilter{StartTime: &from}
	filter.Order = lo.ToPtr(types.OrderAsc)

	mock.ExpectQuery("AND end_date > \\$2 ORDER BY start_date ASC LIMIT \\$3 OFFSET \\$4").
		WithArgs(testTenant, from, types.FILTER_DEFAULT_LIMIT, 0).
		WillReturnRows(sqlmock.NewRows(timePeriodRowColumns).
			AddRow("tp_1", testTenant, nil, utcDate(2024, 1, 1), utcDate(2024, 2, 1), utcDate(2023, 12, 1)))

	periods, err := repo.List(tenantCtx(), filter)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Nil(t, periods[0].SettingsID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimePeriodSettingsRepositoryListActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimePeriodSettingsRepository(db, logger.NewNopLogger())
	now := time.Now().UTC()

	mock.ExpectQuery("FROM time_period_settings").
		WithArgs(testTenant).
		WillReturnRows(sqlmock.NewRows([]string{
			"time_period_settings_id", "tenant", "frequency", "frequency_unit", "is_active",
			"effective_from", "effective_to", "start_day", "end_day", "start_month", "start_day_of_month",
			"end_month", "end_day_of_month", "created_at", "updated_at",
		}).AddRow("tps_1", testTenant, 1, "month", true, utcDate(2024, 1, 1), nil, nil, 31, nil, nil, nil, nil, now, now))

	settings, err := repo.ListActive(tenantCtx())
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, types.FrequencyUnitMonth, settings[0].FrequencyUnit)
	require.NotNil(t, settings[0].EndDay)
	assert.Equal(t, 31, *settings[0].EndDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}
