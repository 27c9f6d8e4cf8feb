package service

import (
	"context"
	"time"

	"github.com/psaworks/psa/internal/domain/timeentry"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/metrics"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
)

type RolloverService interface {
	// RolloverUnapprovedTime moves the company's draft, submitted and changes
	// requested entries ending by currentPeriodEnd so they start at
	// nextPeriodStart, keeping each duration. In per entry mode a partial
	// failure returns both the result and an ErrPartialMutation.
	RolloverUnapprovedTime(ctx context.Context, companyID string, currentPeriodEnd, nextPeriodStart time.Time) (*timeentry.RolloverResult, error)
}

type rolloverService struct {
	ServiceParams
}

func NewRolloverService(params ServiceParams) RolloverService {
	return &rolloverService{ServiceParams: params}
}

func (s *rolloverService) RolloverUnapprovedTime(ctx context.Context, companyID string, currentPeriodEnd, nextPeriodStart time.Time) (*timeentry.RolloverResult, error) {
	if currentPeriodEnd.IsZero() || nextPeriodStart.IsZero() {
		return nil, ierr.NewError("rollover bounds are required").
			WithHint("Current period end and next period start are required").
			Mark(ierr.ErrValidation)
	}

	mode := s.Config.Billing.RolloverMode
	if mode == "" {
		mode = types.RolloverModeAtomic
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	s.Logger.Infow("rolling over unapproved time",
		"company_id", companyID,
		"mode", mode,
		"current_period_end", types.FormatTimestamp(currentPeriodEnd),
		"next_period_start", types.FormatTimestamp(nextPeriodStart),
	)

	if mode == types.RolloverModePerEntry {
		return s.rolloverPerEntry(ctx, companyID, currentPeriodEnd, nextPeriodStart.UTC())
	}
	return s.rolloverAtomic(ctx, companyID, currentPeriodEnd, nextPeriodStart.UTC())
}

func (s *rolloverService) rolloverAtomic(ctx context.Context, companyID string, currentPeriodEnd, nextPeriodStart time.Time) (*timeentry.RolloverResult, error) {
	var moved []*timeentry.RolledEntry

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		moved = nil
		entries, err := s.TimeEntryRepo.ListUnapproved(ctx, companyID, currentPeriodEnd)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			rolled := rollEntry(entry, nextPeriodStart)
			if err := s.TimeEntryRepo.UpdateTimes(ctx, entry.ID, rolled.StartTime, rolled.EndTime); err != nil {
				return ierr.WithError(err).
					WithHintf("Could not move time entry %s, no entries were moved", entry.ID).
					WithReportableDetails(map[string]any{
						"entry_id":   entry.ID,
						"company_id": companyID,
					}).
					Error()
			}
			moved = append(moved, rolled)
		}
		return nil
	})
	if err != nil {
		metrics.AddRolloverEntries(metrics.ResultError, 1)
		s.Logger.Errorw("rollover rolled back",
			"company_id", companyID,
			"error", err,
		)
		return nil, err
	}

	metrics.AddRolloverEntries(metrics.ResultSuccess, len(moved))
	s.Logger.Infow("rolled over unapproved time",
		"company_id", companyID,
		"moved", len(moved),
	)

	return &timeentry.RolloverResult{
		Mode:   types.RolloverModeAtomic,
		Moved:  lo.Ternary(moved == nil, []*timeentry.RolledEntry{}, moved),
		Failed: []*timeentry.RolloverFailure{},
	}, nil
}

func (s *rolloverService) rolloverPerEntry(ctx context.Context, companyID string, currentPeriodEnd, nextPeriodStart time.Time) (*timeentry.RolloverResult, error) {
	var entries []*timeentry.TimeEntry
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.TimeEntryRepo.ListUnapproved(ctx, companyID, currentPeriodEnd)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &timeentry.RolloverResult{
		Mode:   types.RolloverModePerEntry,
		Moved:  []*timeentry.RolledEntry{},
		Failed: []*timeentry.RolloverFailure{},
	}

	for _, entry := range entries {
		rolled := rollEntry(entry, nextPeriodStart)
		err := s.DB.WithTx(ctx, func(ctx context.Context) error {
			return s.TimeEntryRepo.UpdateTimes(ctx, entry.ID, rolled.StartTime, rolled.EndTime)
		})
		if err != nil {
			s.Logger.Warnw("failed to move time entry",
				"company_id", companyID,
				"entry_id", entry.ID,
				"error", err,
			)
			s.Sentry.AddBreadcrumb("rollover", "time entry not moved", map[string]interface{}{
				"company_id": companyID,
				"entry_id":   entry.ID,
			})
			result.Failed = append(result.Failed, &timeentry.RolloverFailure{EntryID: entry.ID, Err: err})
			continue
		}
		result.Moved = append(result.Moved, rolled)
	}

	metrics.AddRolloverEntries(metrics.ResultSuccess, len(result.Moved))
	metrics.AddRolloverEntries(metrics.ResultError, len(result.Failed))

	if len(result.Failed) > 0 {
		failedIDs := lo.Map(result.Failed, func(f *timeentry.RolloverFailure, _ int) string {
			return f.EntryID
		})
		return result, ierr.NewErrorf("%d of %d time entries could not be moved", len(result.Failed), len(entries)).
			WithHint("Some time entries could not be rolled over").
			WithReportableDetails(map[string]any{
				"company_id":       companyID,
				"failed_entry_ids": failedIDs,
				"moved":            len(result.Moved),
			}).
			Mark(ierr.ErrPartialMutation)
	}

	s.Logger.Infow("rolled over unapproved time",
		"company_id", companyID,
		"moved", len(result.Moved),
	)
	return result, nil
}

func rollEntry(entry *timeentry.TimeEntry, nextPeriodStart time.Time) *timeentry.RolledEntry {
	start, end := entry.MovedTo(nextPeriodStart)
	return &timeentry.RolledEntry{
		EntryID:       entry.ID,
		PreviousStart: entry.StartTime,
		PreviousEnd:   entry.EndTime,
		StartTime:     start,
		EndTime:       end,
	}
}
