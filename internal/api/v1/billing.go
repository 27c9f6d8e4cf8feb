package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psaworks/psa/internal/api/dto"
	ierr "github.com/psaworks/psa/internal/errors"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/service"
)

type BillingHandler struct {
	service service.BillingService
	logger  *logger.Logger
}

func NewBillingHandler(service service.BillingService, logger *logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Calculate billing
// @Description Calculate the charges, discounts and final amount of a company for [start_date, end_date)
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.CalculateBillingRequest true "Company and billing window"
// @Success 200 {object} dto.BillingResultResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/calculate [post]
func (h *BillingHandler) CalculateBilling(c *gin.Context) {
	var req dto.CalculateBillingRequest
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

	period, err := req.ToBillingPeriod()
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.CalculateBilling(c.Request.Context(), req.CompanyID, period.Start, period.End)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBillingResultResponse(result))
}
