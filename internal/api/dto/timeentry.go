package dto

import (
	"time"

	"github.com/psaworks/psa/internal/domain/timeentry"
	"github.com/psaworks/psa/internal/types"
	"github.com/psaworks/psa/internal/validator"
	"github.com/samber/lo"
)

// RolloverRequest moves a company's unapproved time ending by
// current_period_end so that it starts at next_period_start
type RolloverRequest struct {
	CompanyID        string `json:"company_id" validate:"required"`
	CurrentPeriodEnd string `json:"current_period_end" validate:"required,utc_timestamp"`
	NextPeriodStart  string `json:"next_period_start" validate:"required,utc_timestamp"`
}

func (r *RolloverRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Bounds returns the parsed current period end and next period start
func (r *RolloverRequest) Bounds() (time.Time, time.Time, error) {
	end, err := types.ParseTimestamp(r.CurrentPeriodEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	next, err := types.ParseTimestamp(r.NextPeriodStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return end, next, nil
}

type RolledEntryResponse struct {
	EntryID   string `json:"entry_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type RolloverFailureResponse struct {
	EntryID string `json:"entry_id"`
	Error   string `json:"error"`
}

type RolloverResponse struct {
	Mode   types.RolloverMode         `json:"mode"`
	Moved  []*RolledEntryResponse     `json:"moved"`
	Failed []*RolloverFailureResponse `json:"failed"`
}

func NewRolloverResponse(r *timeentry.RolloverResult) *RolloverResponse {
	return &RolloverResponse{
		Mode: r.Mode,
		Moved: lo.Map(r.Moved, func(e *timeentry.RolledEntry, _ int) *RolledEntryResponse {
			return &RolledEntryResponse{
				EntryID:   e.EntryID,
				StartTime: types.FormatTimestamp(e.StartTime),
				EndTime:   types.FormatTimestamp(e.EndTime),
			}
		}),
		Failed: lo.Map(r.Failed, func(f *timeentry.RolloverFailure, _ int) *RolloverFailureResponse {
			return &RolloverFailureResponse{EntryID: f.EntryID, Error: f.Err.Error()}
		}),
	}
}
