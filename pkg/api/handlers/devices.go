package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlh/lighthoused/pkg/api/types"
	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// DevicesHandler handles registry endpoints
type DevicesHandler struct {
	controller lighthouse.Controller
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(controller lighthouse.Controller) *DevicesHandler {
	return &DevicesHandler{controller: controller}
}

// ListDevices handles GET /devices
// @Summary      List known base stations
// @Description  Returns the registry snapshot without scanning, with transient status where known
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	ctx := c.Request.Context()

	devices, err := h.controller.GetDevices(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "controller_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, deviceListResponse(devices, h.controller.StatusSnapshot()))
}

// ScanDevices handles POST /devices/scan
// @Summary      Scan for base stations
// @Description  Runs a bounded Bluetooth scan, merges the results into the registry and returns the merged snapshot
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      503  {object}  types.ErrorResponse  "Bluetooth adapter unavailable"
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices/scan [post]
func (h *DevicesHandler) ScanDevices(c *gin.Context) {
	ctx := c.Request.Context()

	devices, err := h.controller.ScanForDevices(ctx)
	if err != nil {
		if errors.Is(err, lighthouse.ErrAdapterUnavailable) {
			c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{
				Error:   "adapter_unavailable",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "controller_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, deviceListResponse(devices, h.controller.StatusSnapshot()))
}

// ClearDevices handles DELETE /devices
// @Summary      Clear saved base stations
// @Description  Empties the device registry; a later scan repopulates it from live discovery
// @Tags         devices
// @Success      204  "Registry cleared"
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices [delete]
func (h *DevicesHandler) ClearDevices(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.controller.ClearSavedDevices(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "controller_error",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// deviceListResponse attaches transient status to registry devices.
func deviceListResponse(devices []lighthouse.Device, statuses map[string]lighthouse.Status) types.ListDevicesResponse {
	views := make([]types.DeviceView, 0, len(devices))
	for _, d := range devices {
		view := types.DeviceView{
			Address:  d.Address,
			Name:     d.Name,
			LastSeen: d.LastSeen,
		}
		if s, ok := statuses[d.Address]; ok {
			view.Status = string(s)
		}
		views = append(views, view)
	}
	return types.ListDevicesResponse{
		Devices: views,
		Count:   len(views),
	}
}
