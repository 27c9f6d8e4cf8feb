package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psaworks/psa/internal/api/dto"
	"github.com/psaworks/psa/internal/domain/billing"
	"github.com/psaworks/psa/internal/domain/timeentry"
	"github.com/psaworks/psa/internal/domain/timeperiod"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/rest/middleware"
	"github.com/psaworks/psa/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockBillingService struct {
	mock.Mock
}

func (m *mockBillingService) CalculateBilling(ctx context.Context, companyID string, start, end time.Time) (*billing.Result, error) {
	args := m.Called(ctx, companyID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Result), args.Error(1)
}

type mockRolloverService struct {
	mock.Mock
}

func (m *mockRolloverService) RolloverUnapprovedTime(ctx context.Context, companyID string, currentPeriodEnd, nextPeriodStart time.Time) (*timeentry.RolloverResult, error) {
	args := m.Called(ctx, companyID, currentPeriodEnd, nextPeriodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timeentry.RolloverResult), args.Error(1)
}

type mockTimePeriodService struct {
	mock.Mock
}

func (m *mockTimePeriodService) periods(args mock.Arguments) ([]*timeperiod.TimePeriod, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*timeperiod.TimePeriod), args.Error(1)
}

func (m *mockTimePeriodService) period(args mock.Arguments) (*timeperiod.TimePeriod, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timeperiod.TimePeriod), args.Error(1)
}

func (m *mockTimePeriodService) GenerateTimePeriods(settings []*timeperiod.Settings, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	return m.periods(m.Called(settings, start, end))
}

func (m *mockTimePeriodService) PreviewTimePeriods(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	return m.periods(m.Called(ctx, start, end))
}

func (m *mockTimePeriodService) GenerateAndSaveTimePeriods(ctx context.Context, start, end time.Time) ([]*timeperiod.TimePeriod, error) {
	return m.periods(m.Called(ctx, start, end))
}

func (m *mockTimePeriodService) GetCurrentTimePeriod(ctx context.Context) (*timeperiod.TimePeriod, error) {
	return m.period(m.Called(ctx))
}

func (m *mockTimePeriodService) GetLatestTimePeriod(ctx context.Context) (*timeperiod.TimePeriod, error) {
	return m.period(m.Called(ctx))
}

func (m *mockTimePeriodService) ListTimePeriods(ctx context.Context, filter *types.TimePeriodFilter) ([]*timeperiod.TimePeriod, error) {
	return m.periods(m.Called(ctx, filter))
}

func (m *mockTimePeriodService) CreateTimePeriod(ctx context.Context, req dto.CreateTimePeriodRequest) (*timeperiod.TimePeriod, error) {
	return m.period(m.Called(ctx, req))
}

type HandlerSuite struct {
	suite.Suite
	billingSvc    *mockBillingService
	rolloverSvc   *mockRolloverService
	timePeriodSvc *mockTimePeriodService
	engine        *gin.Engine
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()

	s.billingSvc = new(mockBillingService)
	s.rolloverSvc = new(mockRolloverService)
	s.timePeriodSvc = new(mockTimePeriodService)

	billingHandler := NewBillingHandler(s.billingSvc, log)
	timeEntryHandler := NewTimeEntryHandler(s.rolloverSvc, log)
	timePeriodHandler := NewTimePeriodHandler(s.timePeriodSvc, log)

	s.engine = gin.New()
	s.engine.Use(middleware.ErrorHandler(log))
	s.engine.GET("/health", NewHealthHandler(nil, log).Health)

	v1Group := s.engine.Group("/v1", middleware.TenantMiddleware)
	v1Group.POST("/billing/calculate", billingHandler.CalculateBilling)
	v1Group.POST("/time-entries/rollover", timeEntryHandler.Rollover)
	v1Group.GET("/time-periods", timePeriodHandler.List)
	v1Group.POST("/time-periods", timePeriodHandler.Create)
	v1Group.GET("/time-periods/current", timePeriodHandler.GetCurrent)
	v1Group.POST("/time-periods/preview", timePeriodHandler.Generate)
	v1Group.POST("/time-periods/generate", timePeriodHandler.GenerateAndSave)
}

func (s *HandlerSuite) TearDownTest() {
	s.billingSvc.AssertExpectations(s.T())
	s.rolloverSvc.AssertExpectations(s.T())
	s.timePeriodSvc.AssertExpectations(s.T())
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(types.HeaderTenantID, "tenant_1")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
}

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *HandlerSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *HandlerSuite) TestCalculateBilling() {
	start, end := utc(2024, 1, 1), utc(2024, 2, 1)
	period, err := types.NewBillingPeriod(start, end)
	s.Require().NoError(err)

	result := billing.NewResult("comp_1", period, types.BillingCycleMonthly, []*billing.Charge{
		billing.NewFixedCharge("svc_1", "Managed Endpoint", decimal.NewFromInt(2), decimal.NewFromInt(50)),
	})
	result.FinalAmount = result.TotalAmount

	s.billingSvc.On("CalculateBilling", mock.Anything, "comp_1", start, end).Return(result, nil)

	w := s.do(http.MethodPost, "/v1/billing/calculate", map[string]string{
		"company_id": "comp_1",
		"start_date": "2024-01-01T00:00:00.000Z",
		"end_date":   "2024-02-01T00:00:00.000Z",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.BillingResultResponse
	s.decode(w, &resp)
	s.Equal("comp_1", resp.CompanyID)
	s.Equal("2024-01-01T00:00:00.000Z", resp.StartDate)
	s.Equal(types.BillingCycleMonthly, resp.BillingCycle)
	s.Require().Len(resp.Charges, 1)
	s.Equal(types.ChargeTypeFixed, resp.Charges[0].Type)
	s.True(decimal.NewFromInt(100).Equal(resp.TotalAmount))
	s.True(decimal.NewFromInt(100).Equal(resp.FinalAmount))
	s.NotNil(resp.Discounts)
	s.NotNil(resp.Adjustments)
}

func (s *HandlerSuite) TestCalculateBillingRejectsNonUTCDates() {
	w := s.do(http.MethodPost, "/v1/billing/calculate", map[string]string{
		"company_id": "comp_1",
		"start_date": "2024-01-01T00:00:00+02:00",
		"end_date":   "2024-02-01T00:00:00.000Z",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.billingSvc.AssertNotCalled(s.T(), "CalculateBilling")
}

func (s *HandlerSuite) TestCalculateBillingRejectsInvertedWindow() {
	w := s.do(http.MethodPost, "/v1/billing/calculate", map[string]string{
		"company_id": "comp_1",
		"start_date": "2024-02-01T00:00:00.000Z",
		"end_date":   "2024-01-01T00:00:00.000Z",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestCalculateBillingNoActivePlan() {
	s.billingSvc.On("CalculateBilling", mock.Anything, "comp_1", mock.Anything, mock.Anything).
		Return(nil, ierr.NewError("no active plan").
			WithHint("The company has no active billing plan for the period").
			Mark(ierr.ErrNoActivePlan))

	w := s.do(http.MethodPost, "/v1/billing/calculate", map[string]string{
		"company_id": "comp_1",
		"start_date": "2024-01-01T00:00:00.000Z",
		"end_date":   "2024-02-01T00:00:00.000Z",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	var resp ierr.ErrorResponse
	s.decode(w, &resp)
	s.False(resp.Success)
	s.Equal("The company has no active billing plan for the period", resp.Error.Display)
}

func (s *HandlerSuite) TestRollover() {
	end, next := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), utc(2024, 2, 1)
	result := &timeentry.RolloverResult{
		Mode: types.RolloverModeAtomic,
		Moved: []*timeentry.RolledEntry{{
			EntryID:   "te_a",
			StartTime: next,
			EndTime:   next.Add(150 * time.Minute),
		}},
	}
	s.rolloverSvc.On("RolloverUnapprovedTime", mock.Anything, "comp_1", end, next).Return(result, nil)

	w := s.do(http.MethodPost, "/v1/time-entries/rollover", map[string]string{
		"company_id":         "comp_1",
		"current_period_end": "2024-01-31T23:59:59.000Z",
		"next_period_start":  "2024-02-01T00:00:00.000Z",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.RolloverResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Moved, 1)
	s.Equal("2024-02-01T02:30:00.000Z", resp.Moved[0].EndTime)
	s.Empty(resp.Failed)
}

func (s *HandlerSuite) TestRolloverPartialFailureIsMultiStatus() {
	next := utc(2024, 2, 1)
	result := &timeentry.RolloverResult{
		Mode:  types.RolloverModePerEntry,
		Moved: []*timeentry.RolledEntry{{EntryID: "te_a", StartTime: next, EndTime: next.Add(time.Hour)}},
		Failed: []*timeentry.RolloverFailure{{
			EntryID: "te_b",
			Err:     ierr.NewError("row locked").Mark(ierr.ErrDatabase),
		}},
	}
	s.rolloverSvc.On("RolloverUnapprovedTime", mock.Anything, "comp_1", mock.Anything, next).
		Return(result, ierr.NewError("rollover partially applied").Mark(ierr.ErrPartialMutation))

	w := s.do(http.MethodPost, "/v1/time-entries/rollover", map[string]string{
		"company_id":         "comp_1",
		"current_period_end": "2024-01-31T23:59:59.000Z",
		"next_period_start":  "2024-02-01T00:00:00.000Z",
	})
	s.Require().Equal(http.StatusMultiStatus, w.Code, w.Body.String())

	var resp dto.RolloverResponse
	s.decode(w, &resp)
	s.Len(resp.Moved, 1)
	s.Require().Len(resp.Failed, 1)
	s.Equal("te_b", resp.Failed[0].EntryID)
}

func (s *HandlerSuite) TestRolloverFailureIsError() {
	s.rolloverSvc.On("RolloverUnapprovedTime", mock.Anything, "comp_1", mock.Anything, mock.Anything).
		Return(nil, ierr.NewError("row locked").Mark(ierr.ErrDatabase))

	w := s.do(http.MethodPost, "/v1/time-entries/rollover", map[string]string{
		"company_id":         "comp_1",
		"current_period_end": "2024-01-31T23:59:59.000Z",
		"next_period_start":  "2024-02-01T00:00:00.000Z",
	})
	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *HandlerSuite) TestPreviewUsesActiveSettings() {
	start, end := utc(2024, 1, 1), utc(2024, 3, 1)
	periods := []*timeperiod.TimePeriod{
		{ID: "tp_1", StartDate: utc(2024, 1, 1), EndDate: utc(2024, 2, 1)},
		{ID: "tp_2", StartDate: utc(2024, 2, 1), EndDate: utc(2024, 3, 1)},
	}
	s.timePeriodSvc.On("PreviewTimePeriods", mock.Anything, start, end).Return(periods, nil)

	w := s.do(http.MethodPost, "/v1/time-periods/preview", map[string]string{
		"start_date": "2024-01-01T00:00:00.000Z",
		"end_date":   "2024-03-01T00:00:00.000Z",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.ListTimePeriodsResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Items, 2)
	s.Equal("2024-02-01T00:00:00.000Z", resp.Items[1].StartDate)
}

func (s *HandlerSuite) TestPreviewWithAdHocSettings() {
	start, end := utc(2024, 1, 1), utc(2024, 1, 15)
	s.timePeriodSvc.On("GenerateTimePeriods", mock.MatchedBy(func(settings []*timeperiod.Settings) bool {
		return len(settings) == 1 &&
			settings[0].FrequencyUnit == types.FrequencyUnitWeek &&
			settings[0].TenantID == "tenant_1"
	}), start, end).Return([]*timeperiod.TimePeriod{
		{ID: "tp_1", StartDate: utc(2024, 1, 1), EndDate: utc(2024, 1, 8)},
		{ID: "tp_2", StartDate: utc(2024, 1, 8), EndDate: utc(2024, 1, 15)},
	}, nil)

	w := s.do(http.MethodPost, "/v1/time-periods/preview", map[string]any{
		"start_date": "2024-01-01T00:00:00.000Z",
		"end_date":   "2024-01-15T00:00:00.000Z",
		"settings": []map[string]any{{
			"frequency":      1,
			"frequency_unit": "week",
			"effective_from": "2024-01-01T00:00:00.000Z",
			"start_day":      1,
			"end_day":        7,
		}},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *HandlerSuite) TestGenerateAndSaveRejectsAdHocSettings() {
	w := s.do(http.MethodPost, "/v1/time-periods/generate", map[string]any{
		"start_date": "2024-01-01T00:00:00.000Z",
		"end_date":   "2024-01-15T00:00:00.000Z",
		"settings": []map[string]any{{
			"frequency":      1,
			"frequency_unit": "week",
			"effective_from": "2024-01-01T00:00:00.000Z",
		}},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.timePeriodSvc.AssertNotCalled(s.T(), "GenerateAndSaveTimePeriods")
}

func (s *HandlerSuite) TestGenerateAndSave() {
	start, end := utc(2024, 1, 1), utc(2024, 2, 1)
	s.timePeriodSvc.On("GenerateAndSaveTimePeriods", mock.Anything, start, end).Return([]*timeperiod.TimePeriod{
		{ID: "tp_1", StartDate: start, EndDate: end},
	}, nil)

	w := s.do(http.MethodPost, "/v1/time-periods/generate", map[string]string{
		"start_date": "2024-01-01T00:00:00.000Z",
		"end_date":   "2024-02-01T00:00:00.000Z",
	})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *HandlerSuite) TestGetCurrentNotFound() {
	s.timePeriodSvc.On("GetCurrentTimePeriod", mock.Anything).
		Return(nil, ierr.NewError("no current time period").
			WithHint("No time period contains the current date").
			Mark(ierr.ErrNotFound))

	w := s.do(http.MethodGet, "/v1/time-periods/current", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestListBindsFilter() {
	s.timePeriodSvc.On("ListTimePeriods", mock.Anything, mock.MatchedBy(func(f *types.TimePeriodFilter) bool {
		return f.GetLimit() == 10 && f.GetOrder() == types.OrderAsc
	})).Return([]*timeperiod.TimePeriod{}, nil)

	w := s.do(http.MethodGet, "/v1/time-periods?limit=10&order=asc", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"items":[]}`, w.Body.String())
}

func (s *HandlerSuite) TestCreate() {
	req := dto.CreateTimePeriodRequest{
		StartDate: "2024-03-01T00:00:00.000Z",
		EndDate:   "2024-04-01T00:00:00.000Z",
	}
	s.timePeriodSvc.On("CreateTimePeriod", mock.Anything, req).Return(&timeperiod.TimePeriod{
		ID:        "tp_9",
		StartDate: utc(2024, 3, 1),
		EndDate:   utc(2024, 4, 1),
	}, nil)

	w := s.do(http.MethodPost, "/v1/time-periods", req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.TimePeriodResponse
	s.decode(w, &resp)
	s.Equal("tp_9", resp.PeriodID)
}

func TestMissingTenantNeverReachesService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockBillingService)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler(logger.NewNopLogger()))
	engine.POST("/v1/billing/calculate", middleware.TenantMiddleware, NewBillingHandler(svc, logger.NewNopLogger()).CalculateBilling)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/billing/calculate", bytes.NewBufferString(`{}`)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CalculateBilling")
}
