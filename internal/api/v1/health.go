package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
)

type HealthHandler struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewHealthHandler accepts a nil db, the check then only reports the process as up
func NewHealthHandler(db *postgres.DB, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// @Summary Health check
// @Description Reports the service and database status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			h.logger.Errorw("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
