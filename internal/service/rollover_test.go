package service

import (
	"testing"
	"time"

	"github.com/psaworks/psa/internal/domain/timeentry"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/testutil"
	"github.com/psaworks/psa/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type RolloverServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RolloverService
}

func TestRolloverService(t *testing.T) {
	suite.Run(t, new(RolloverServiceSuite))
}

func (s *RolloverServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRolloverService(newTestServiceParams(&s.BaseServiceTestSuite))
	s.CreateCompany("comp_1", "US-NY", false)

	s.addEntry("te_a", "comp_1", types.ApprovalStatusDraft, utcTime(2024, 1, 30, 8, 0), utcTime(2024, 1, 30, 10, 30))
	s.addEntry("te_b", "comp_1", types.ApprovalStatusSubmitted, utcTime(2024, 1, 29, 13, 0), utcTime(2024, 1, 29, 14, 15))
	s.addEntry("te_c", "comp_1", types.ApprovalStatusChangesRequested, utcTime(2024, 1, 15, 9, 0), utcTime(2024, 1, 15, 9, 45))
	s.addEntry("te_approved", "comp_1", types.ApprovalStatusApproved, utcTime(2024, 1, 30, 8, 0), utcTime(2024, 1, 30, 9, 0))
	s.addEntry("te_late", "comp_1", types.ApprovalStatusDraft, utcTime(2024, 1, 31, 23, 0), utcTime(2024, 2, 1, 1, 0))
	s.addEntry("te_other", "comp_2", types.ApprovalStatusDraft, utcTime(2024, 1, 30, 8, 0), utcTime(2024, 1, 30, 9, 0))
}

func (s *RolloverServiceSuite) addEntry(id, companyID string, status types.ApprovalStatus, start, end time.Time) {
	s.Require().NoError(s.GetStores().TimeEntryRepo.Add(s.GetContext(), &testutil.TimeEntryRecord{
		Entry: timeentry.BillableEntry{
			TimeEntry: timeentry.TimeEntry{
				ID:             id,
				TenantID:       s.TenantID(),
				WorkItemID:     "ticket_1",
				WorkItemType:   types.WorkItemTypeTicket,
				UserID:         "user_1",
				StartTime:      start,
				EndTime:        end,
				ApprovalStatus: status,
				ServiceID:      lo.ToPtr("svc_dev"),
			},
		},
		CompanyID: companyID,
	}))
}

func (s *RolloverServiceSuite) entry(id string) *timeentry.TimeEntry {
	e, err := s.GetStores().TimeEntryRepo.GetEntry(s.GetContext(), id)
	s.Require().NoError(err)
	return e
}

func (s *RolloverServiceSuite) rollover() (*timeentry.RolloverResult, error) {
	return s.service.RolloverUnapprovedTime(s.GetContext(), "comp_1", utcDate(2024, 2, 1), utcDate(2024, 2, 1))
}

func (s *RolloverServiceSuite) TestUnapprovedEntriesMoveKeepingDuration() {
	result, err := s.rollover()
	s.Require().NoError(err)

	s.Equal(types.RolloverModeAtomic, result.Mode)
	s.Len(result.Moved, 3)
	s.Empty(result.Failed)

	moved := s.entry("te_a")
	s.Equal(utcTime(2024, 2, 1, 0, 0), moved.StartTime)
	s.Equal(utcTime(2024, 2, 1, 2, 30), moved.EndTime)

	movedB := s.entry("te_b")
	s.Equal(utcTime(2024, 2, 1, 1, 15), movedB.EndTime)

	rolled, ok := lo.Find(result.Moved, func(r *timeentry.RolledEntry) bool { return r.EntryID == "te_a" })
	s.Require().True(ok)
	s.Equal(utcTime(2024, 1, 30, 8, 0), rolled.PreviousStart)
	s.Equal(utcTime(2024, 1, 30, 10, 30), rolled.PreviousEnd)
}

func (s *RolloverServiceSuite) TestOtherEntriesAreUntouched() {
	_, err := s.rollover()
	s.Require().NoError(err)

	s.Equal(utcTime(2024, 1, 30, 8, 0), s.entry("te_approved").StartTime)
	s.Equal(utcTime(2024, 1, 31, 23, 0), s.entry("te_late").StartTime, "ends after the current period")
	s.Equal(utcTime(2024, 1, 30, 8, 0), s.entry("te_other").StartTime)
}

func (s *RolloverServiceSuite) TestAtomicFailureMovesNothing() {
	s.GetStores().TimeEntryRepo.FailUpdateFor("te_b", ierr.NewError("row locked").Mark(ierr.ErrDatabase))

	result, err := s.rollover()
	s.Nil(result)
	s.Require().Error(err)
	s.False(ierr.IsPartialMutation(err))

	s.Equal(utcTime(2024, 1, 30, 8, 0), s.entry("te_a").StartTime, "earlier update was rolled back")
	s.Equal(utcTime(2024, 1, 29, 13, 0), s.entry("te_b").StartTime)
}

func (s *RolloverServiceSuite) TestPerEntryReportsFailures() {
	s.GetConfig().Billing.RolloverMode = types.RolloverModePerEntry
	s.GetStores().TimeEntryRepo.FailUpdateFor("te_b", ierr.NewError("row locked").Mark(ierr.ErrDatabase))

	result, err := s.rollover()
	s.True(ierr.IsPartialMutation(err))
	s.Require().NotNil(result)

	s.Equal(types.RolloverModePerEntry, result.Mode)
	s.Len(result.Moved, 2)
	s.Require().Len(result.Failed, 1)
	s.Equal("te_b", result.Failed[0].EntryID)

	s.Equal(utcTime(2024, 2, 1, 0, 0), s.entry("te_a").StartTime)
	s.Equal(utcTime(2024, 1, 29, 13, 0), s.entry("te_b").StartTime)
	s.Equal(utcTime(2024, 2, 1, 0, 0), s.entry("te_c").StartTime)
}

func (s *RolloverServiceSuite) TestPerEntryWithoutFailures() {
	s.GetConfig().Billing.RolloverMode = types.RolloverModePerEntry

	result, err := s.rollover()
	s.Require().NoError(err)
	s.Len(result.Moved, 3)
	s.Empty(result.Failed)
}

func (s *RolloverServiceSuite) TestNothingToMove() {
	result, err := s.service.RolloverUnapprovedTime(s.GetContext(), "comp_empty", utcDate(2024, 2, 1), utcDate(2024, 2, 1))
	s.Require().NoError(err)
	s.NotNil(result.Moved)
	s.Empty(result.Moved)
}

func (s *RolloverServiceSuite) TestMissingBounds() {
	_, err := s.service.RolloverUnapprovedTime(s.GetContext(), "comp_1", utcDate(2024, 2, 1), time.Time{})
	s.True(ierr.IsValidation(err))
}
