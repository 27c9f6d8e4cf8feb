package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psaworks/psa/internal/api/dto"
	"github.com/psaworks/psa/internal/domain/timeperiod"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/service"
	"github.com/psaworks/psa/internal/types"
)

type TimePeriodHandler struct {
	service service.TimePeriodService
	logger  *logger.Logger
}

func NewTimePeriodHandler(service service.TimePeriodService, logger *logger.Logger) *TimePeriodHandler {
	return &TimePeriodHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Preview time periods
// @Description Generate the time periods covering [start_date, end_date) without storing them.
// @Description Ad hoc settings in the request replace the tenant's active settings.
// @Tags Time Periods
// @Accept json
// @Produce json
// @Param request body dto.GenerateTimePeriodsRequest true "Generation window and optional settings"
// @Success 200 {object} dto.ListTimePeriodsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /time-periods/preview [post]
func (h *TimePeriodHandler) Generate(c *gin.Context) {
	req, window, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	var (
		periods []*timeperiod.TimePeriod
		err     error
	)
	if len(req.Settings) > 0 {
		settings := make([]*timeperiod.Settings, 0, len(req.Settings))
		for i := range req.Settings {
			s, err := req.Settings[i].ToSettings(c.Request.Context())
			if err != nil {
				c.Error(err)
				return
			}
			settings = append(settings, s)
		}
		periods, err = h.service.GenerateTimePeriods(settings, window.Start, window.End)
	} else {
		periods, err = h.service.PreviewTimePeriods(c.Request.Context(), window.Start, window.End)
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListTimePeriodsResponse(periods))
}

// @Summary Generate and store time periods
// @Description Generate the time periods covering [start_date, end_date) from the tenant's active settings and store the new ones
// @Tags Time Periods
// @Accept json
// @Produce json
// @Param request body dto.GenerateTimePeriodsRequest true "Generation window"
// @Success 201 {object} dto.ListTimePeriodsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /time-periods/generate [post]
func (h *TimePeriodHandler) GenerateAndSave(c *gin.Context) {
	req, window, ok := h.bindGenerate(c)
	if !ok {
		return
	}

	if len(req.Settings) > 0 {
		c.Error(ierr.NewError("ad hoc settings cannot be stored").
			WithHint("Stored time periods are generated from the active settings only, remove settings from the request").
			Mark(ierr.ErrValidation))
		return
	}

	periods, err := h.service.GenerateAndSaveTimePeriods(c.Request.Context(), window.Start, window.End)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewListTimePeriodsResponse(periods))
}

// @Summary Get current time period
// @Description Get the stored time period containing now
// @Tags Time Periods
// @Produce json
// @Success 200 {object} dto.TimePeriodResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /time-periods/current [get]
func (h *TimePeriodHandler) GetCurrent(c *gin.Context) {
	period, err := h.service.GetCurrentTimePeriod(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTimePeriodResponse(period))
}

// @Summary Get latest time period
// @Description Get the stored time period with the latest end date
// @Tags Time Periods
// @Produce json
// @Success 200 {object} dto.TimePeriodResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /time-periods/latest [get]
func (h *TimePeriodHandler) GetLatest(c *gin.Context) {
	period, err := h.service.GetLatestTimePeriod(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTimePeriodResponse(period))
}

// @Summary List time periods
// @Description List stored time periods, optionally restricted to those overlapping a time range
// @Tags Time Periods
// @Produce json
// @Param filter query types.TimePeriodFilter false "Filter"
// @Success 200 {object} dto.ListTimePeriodsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /time-periods [get]
func (h *TimePeriodHandler) List(c *gin.Context) {
	filter := types.NewTimePeriodFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	periods, err := h.service.ListTimePeriods(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListTimePeriodsResponse(periods))
}

// @Summary Create time period
// @Description Store a manually defined time period. It must not overlap an existing one.
// @Tags Time Periods
// @Accept json
// @Produce json
// @Param request body dto.CreateTimePeriodRequest true "Period bounds"
// @Success 201 {object} dto.TimePeriodResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /time-periods [post]
func (h *TimePeriodHandler) Create(c *gin.Context) {
	var req dto.CreateTimePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	period, err := h.service.CreateTimePeriod(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTimePeriodResponse(period))
}

func (h *TimePeriodHandler) bindGenerate(c *gin.Context) (*dto.GenerateTimePeriodsRequest, types.BillingPeriod, bool) {
	var req dto.GenerateTimePeriodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return nil, types.BillingPeriod{}, false
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return nil, types.BillingPeriod{}, false
	}

	window, err := req.Window()
	if err != nil {
		c.Error(err)
		return nil, types.BillingPeriod{}, false
	}
	return &req, window, true
}
