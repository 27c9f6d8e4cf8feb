package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/psaworks/psa/internal/domain/timeentry"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
)

const timeEntryColumns = `te.entry_id, te.tenant, te.work_item_id, te.work_item_type, te.user_id,
	te.start_time, te.end_time, te.approval_status, te.service_id, te.tax_region,
	COALESCE(te.notes, '') AS notes, te.created_at, te.updated_at`

// workItemJoins resolve the owning company of a time entry through its ticket
// or its project task
const workItemJoins = `
	LEFT JOIN tickets t
		ON te.work_item_type = 'ticket' AND t.ticket_id = te.work_item_id AND t.tenant = te.tenant
	LEFT JOIN project_tasks pt
		ON te.work_item_type = 'project_task' AND pt.task_id = te.work_item_id AND pt.tenant = te.tenant
	LEFT JOIN project_phases pp ON pp.phase_id = pt.phase_id AND pp.tenant = te.tenant
	LEFT JOIN projects p ON p.project_id = pp.project_id AND p.tenant = te.tenant`

type timeEntryRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTimeEntryRepository(db *postgres.DB, logger *logger.Logger) timeentry.Repository {
	return &timeEntryRepository{db: db, logger: logger}
}

func (r *timeEntryRepository) ListBillable(ctx context.Context, filter timeentry.BillableFilter) ([]*timeentry.BillableEntry, error) {
	span := StartRepositorySpan(ctx, "time_entry", "list_billable", map[string]interface{}{
		"company_id": filter.CompanyID,
		"plan_id":    filter.PlanID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + timeEntryColumns + `, sc.service_name, sc.default_rate, ps.custom_rate
	FROM time_entries te
	JOIN service_catalog sc ON sc.service_id = te.service_id AND sc.tenant = te.tenant
	JOIN plan_services ps ON ps.service_id = sc.service_id AND ps.tenant = te.tenant` + workItemJoins + `
	WHERE te.tenant = $1
		AND ps.plan_id = $2
		AND te.start_time >= $3
		AND te.end_time <= $4
		AND sc.category_id IS NOT DISTINCT FROM $5
		AND te.approval_status = $6
		AND (t.company_id = $7 OR p.company_id = $7)
	ORDER BY te.start_time, te.entry_id`

	entries := []*timeentry.BillableEntry{}
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query,
		tenantID,
		filter.PlanID,
		filter.Period.Start,
		filter.Period.End,
		filter.ServiceCategory,
		types.ApprovalStatusApproved,
		filter.CompanyID,
	)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list billable time entries")
	}

	SetSpanSuccess(span)
	return entries, nil
}

func (r *timeEntryRepository) ListUnapproved(ctx context.Context, companyID string, endsBy time.Time) ([]*timeentry.TimeEntry, error) {
	span := StartRepositorySpan(ctx, "time_entry", "list_unapproved", map[string]interface{}{
		"company_id": companyID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	statuses := lo.Map(types.RolloverStatuses(), func(s types.ApprovalStatus, _ int) string {
		return string(s)
	})

	query := `SELECT ` + timeEntryColumns + `
	FROM time_entries te` + workItemJoins + `
	WHERE te.tenant = $1
		AND (t.company_id = $2 OR p.company_id = $2)
		AND te.approval_status = ANY($3)
		AND te.end_time <= $4
	ORDER BY te.start_time, te.entry_id`

	entries := []*timeentry.TimeEntry{}
	err = r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query,
		tenantID, companyID, pq.Array(statuses), endsBy.UTC())
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WrapDatabase(err, "Failed to list unapproved time entries")
	}

	SetSpanSuccess(span)
	return entries, nil
}

func (r *timeEntryRepository) UpdateTimes(ctx context.Context, entryID string, start, end time.Time) error {
	span := StartRepositorySpan(ctx, "time_entry", "update_times", map[string]interface{}{
		"entry_id": entryID,
	})
	defer FinishSpan(span)

	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}

	query := `UPDATE time_entries
	SET start_time = $3, end_time = $4, updated_at = $5
	WHERE tenant = $1 AND entry_id = $2`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		tenantID, entryID, start.UTC(), end.UTC(), time.Now().UTC())
	if err != nil {
		SetSpanError(span, err)
		return ierr.WrapDatabase(err, "Failed to update time entry")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		SetSpanError(span, err)
		return ierr.WrapDatabase(err, "Failed to update time entry")
	}
	if rows == 0 {
		return ierr.NewErrorf("time entry %s not found", entryID).
			WithHint("Time entry was not found").
			WithReportableDetails(map[string]any{
				"entry_id": entryID,
			}).
			Mark(ierr.ErrNotFound)
	}

	SetSpanSuccess(span)
	return nil
}
