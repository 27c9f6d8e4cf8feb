package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psaworks/psa/internal/api/dto"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/service"
)

type TimeEntryHandler struct {
	service service.RolloverService
	logger  *logger.Logger
}

func NewTimeEntryHandler(service service.RolloverService, logger *logger.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Roll over unapproved time
// @Description Move a company's draft, submitted and changes requested time entries into the next period.
// @Description A per entry rollover with failures answers 207 with the moved and failed entries.
// @Tags Time Entries
// @Accept json
// @Produce json
// @Param request body dto.RolloverRequest true "Company and period bounds"
// @Success 200 {object} dto.RolloverResponse
// @Success 207 {object} dto.RolloverResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /time-entries/rollover [post]
func (h *TimeEntryHandler) Rollover(c *gin.Context) {
	var req dto.RolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	currentPeriodEnd, nextPeriodStart, err := req.Bounds()
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.RolloverUnapprovedTime(c.Request.Context(), req.CompanyID, currentPeriodEnd, nextPeriodStart)
	if err != nil {
		if ierr.IsPartialMutation(err) && result != nil {
			h.logger.Warnw("rollover partially applied",
				"company_id", req.CompanyID,
				"moved", len(result.Moved),
				"failed", len(result.Failed),
			)
			c.JSON(http.StatusMultiStatus, dto.NewRolloverResponse(result))
			return
		}
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRolloverResponse(result))
}
