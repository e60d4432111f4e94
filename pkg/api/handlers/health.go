package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openlh/lighthoused/pkg/api/types"
	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	controller lighthouse.Controller
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(controller lighthouse.Controller) *HealthHandler {
	return &HealthHandler{controller: controller}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the API and the Bluetooth adapter
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Service is degraded"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	adapterStatus := "unavailable"
	if h.controller.IsAvailable() {
		adapterStatus = "available"
	}

	status := "healthy"
	httpStatus := http.StatusOK

	if adapterStatus != "available" {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Adapter:   adapterStatus,
		Timestamp: time.Now(),
	})
}
