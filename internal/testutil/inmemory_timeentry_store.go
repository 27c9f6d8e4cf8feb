package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/psaworks/psa/internal/domain/timeentry"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
)

// TimeEntryRecord is a stored entry with the linkage the SQL joins resolve:
// the company owning its work item and the plans and category of its service
type TimeEntryRecord struct {
	Entry      timeentry.BillableEntry
	CompanyID  string
	PlanIDs    []string
	CategoryID *string
}

// InMemoryTimeEntryStore implements timeentry.Repository
type InMemoryTimeEntryStore struct {
	*InMemoryStore[*TimeEntryRecord]

	mu         sync.Mutex
	failUpdate map[string]error
}

func NewInMemoryTimeEntryStore() *InMemoryTimeEntryStore {
	return &InMemoryTimeEntryStore{
		InMemoryStore: NewInMemoryStore[*TimeEntryRecord](),
		failUpdate:    make(map[string]error),
	}
}

func (s *InMemoryTimeEntryStore) Add(ctx context.Context, r *TimeEntryRecord) error {
	return s.InMemoryStore.Create(ctx, r.Entry.ID, r)
}

// FailUpdateFor makes UpdateTimes return err for the entry
func (s *InMemoryTimeEntryStore) FailUpdateFor(entryID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdate[entryID] = err
}

// GetEntry returns the stored entry, ignoring tenant scoping
func (s *InMemoryTimeEntryStore) GetEntry(ctx context.Context, entryID string) (*timeentry.TimeEntry, error) {
	r, err := s.InMemoryStore.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry := r.Entry.TimeEntry
	return &entry, nil
}

func (s *InMemoryTimeEntryStore) ListBillable(ctx context.Context, filter timeentry.BillableFilter) ([]*timeentry.BillableEntry, error) {
	records, err := s.InMemoryStore.List(ctx, filter,
		func(ctx context.Context, r *TimeEntryRecord, _ interface{}) bool {
			e := r.Entry
			return CheckTenant(ctx, e.TenantID) &&
				r.CompanyID == filter.CompanyID &&
				e.ApprovalStatus == types.ApprovalStatusApproved &&
				!e.StartTime.Before(filter.Period.Start) &&
				!e.EndTime.After(filter.Period.End) &&
				lo.Contains(r.PlanIDs, filter.PlanID) &&
				sameCategory(r.CategoryID, filter.ServiceCategory)
		},
		func(i, j *TimeEntryRecord) bool {
			return i.Entry.StartTime.Before(j.Entry.StartTime)
		},
	)
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(r *TimeEntryRecord, _ int) *timeentry.BillableEntry {
		e := r.Entry
		return &e
	}), nil
}

func (s *InMemoryTimeEntryStore) ListUnapproved(ctx context.Context, companyID string, endsBy time.Time) ([]*timeentry.TimeEntry, error) {
	records, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, r *TimeEntryRecord, _ interface{}) bool {
			e := r.Entry
			return CheckTenant(ctx, e.TenantID) &&
				r.CompanyID == companyID &&
				lo.Contains(types.RolloverStatuses(), e.ApprovalStatus) &&
				!e.EndTime.After(endsBy)
		},
		func(i, j *TimeEntryRecord) bool {
			return i.Entry.ID < j.Entry.ID
		},
	)
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(r *TimeEntryRecord, _ int) *timeentry.TimeEntry {
		e := r.Entry.TimeEntry
		return &e
	}), nil
}

func (s *InMemoryTimeEntryStore) UpdateTimes(ctx context.Context, entryID string, start, end time.Time) error {
	s.mu.Lock()
	failErr := s.failUpdate[entryID]
	s.mu.Unlock()
	if failErr != nil {
		return failErr
	}

	r, err := s.InMemoryStore.Get(ctx, entryID)
	if err != nil || !CheckTenant(ctx, r.Entry.TenantID) {
		return ierr.NewErrorf("time entry %s not found", entryID).
			WithHint("Time entry was not found").
			Mark(ierr.ErrNotFound)
	}

	updated := *r
	updated.Entry.StartTime = start.UTC()
	updated.Entry.EndTime = end.UTC()
	updated.Entry.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, entryID, &updated)
}

func sameCategory(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
