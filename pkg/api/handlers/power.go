package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openlh/lighthoused/pkg/api/schema"
	"github.com/openlh/lighthoused/pkg/api/types"
	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// PowerHandler handles power transition endpoints
type PowerHandler struct {
	controller lighthouse.Controller
	subscriber lighthouse.EventSubscriber
	validator  *schema.Validator
}

// NewPowerHandler creates a new power handler
func NewPowerHandler(controller lighthouse.Controller, subscriber lighthouse.EventSubscriber, validator *schema.Validator) *PowerHandler {
	return &PowerHandler{
		controller: controller,
		subscriber: subscriber,
		validator:  validator,
	}
}

// Transition handles POST /power
// @Summary      Transition all base stations
// @Description  Scans, merges, then powers every known and discovered base station on or into standby. Partial failure is reported per device, not as a call error.
// @Tags         power
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "Power command: {\"command\": \"power_on\"|\"standby\"}"
// @Success      200      {object}  types.PowerResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      503      {object}  types.ErrorResponse  "Bluetooth adapter unavailable"
// @Failure      500      {object}  types.ErrorResponse  "Controller error"
// @Router       /power [post]
func (h *PowerHandler) Transition(c *gin.Context) {
	ctx := c.Request.Context()

	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.validator.Validate(schema.PowerRequest, req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	command, _ := req["command"].(string)

	var results []lighthouse.DeviceResult
	var err error
	if command == "power_on" {
		results, err = h.controller.PowerOnAll(ctx)
	} else {
		results, err = h.controller.StandbyAll(ctx)
	}
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

	resp := types.PowerResponse{
		Command: command,
		Total:   len(results),
		Devices: make([]types.PowerResultView, 0, len(results)),
	}
	for _, r := range results {
		view := types.PowerResultView{
			Address: r.Device.Address,
			Name:    r.Device.Name,
			Status:  string(r.Status),
		}
		if r.Err != nil {
			view.Error = r.Err.Error()
		} else {
			resp.Updated++
		}
		resp.Devices = append(resp.Devices, view)
	}

	c.JSON(http.StatusOK, resp)
}

// Events handles GET /power/events (SSE stream)
// @Summary      Subscribe to status events
// @Description  Server-Sent Events stream of per-device power status changes
// @Tags         power
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /power/events [get]
func (h *PowerHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Subscribe to events
	eventChan := h.subscriber.Subscribe()
	defer h.subscriber.Unsubscribe(eventChan)

	// Send initial connection event
	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
		"message":   "Connected to status event stream",
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	// Heartbeat ticker
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, "status", event)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

// sendSSEEvent writes an SSE event to the response
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	io.WriteString(w, "event: "+eventType+"\n")
	io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
