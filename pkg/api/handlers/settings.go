package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlh/lighthoused/pkg/api/schema"
	"github.com/openlh/lighthoused/pkg/api/types"
	"github.com/openlh/lighthoused/pkg/db"
)

// SettingsHandler handles settings endpoints
type SettingsHandler struct {
	store     db.SettingsStore
	validator *schema.Validator
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store db.SettingsStore, validator *schema.Validator) *SettingsHandler {
	return &SettingsHandler{store: store, validator: validator}
}

// GetSettings handles GET /settings
// @Summary      Read settings
// @Description  Returns the current orchestration tunables and display preferences
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.SettingsView
// @Failure      500  {object}  types.ErrorResponse  "Store error"
// @Router       /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.store.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "store_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settingsView(settings))
}

// PatchSettings handles PATCH /settings
// @Summary      Update settings
// @Description  Applies a partial settings update. Omitted fields keep their current values. Orchestration changes take effect on the next power call.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      types.SettingsView  true  "Fields to update"
// @Success      200      {object}  types.SettingsView
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      500      {object}  types.ErrorResponse  "Store error"
// @Router       /settings [patch]
func (h *SettingsHandler) PatchSettings(c *gin.Context) {
	ctx := c.Request.Context()

	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.validator.Validate(schema.SettingsPatch, req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	settings, err := h.store.Get(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "store_error",
			Message: err.Error(),
		})
		return
	}

	applyPatch(settings, req)

	if err := h.store.Update(ctx, settings); err != nil {
		if errors.Is(err, db.ErrSettingsNotFound) {
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{
				Error:   "store_error",
				Message: "settings row missing",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "store_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settingsView(settings))
}

// applyPatch overlays the validated patch document on current settings.
// JSON numbers arrive as float64 from the generic decode.
func applyPatch(s *db.Settings, req map[string]any) {
	if v, ok := req["api_host"].(string); ok {
		s.APIHost = v
	}
	if v, ok := req["api_port"].(float64); ok {
		s.APIPort = int(v)
	}
	if v, ok := req["scan_window_ms"].(float64); ok {
		s.ScanWindowMS = int(v)
	}
	if v, ok := req["connect_timeout_ms"].(float64); ok {
		s.ConnectTimeoutMS = int(v)
	}
	if v, ok := req["connect_attempts"].(float64); ok {
		s.ConnectAttempts = int(v)
	}
	if v, ok := req["backoff_base_ms"].(float64); ok {
		s.BackoffBaseMS = int(v)
	}
	if v, ok := req["call_budget_ms"].(float64); ok {
		s.CallBudgetMS = int(v)
	}
	if v, ok := req["theme"].(string); ok {
		s.Theme = v
	}
}

func settingsView(s *db.Settings) types.SettingsView {
	return types.SettingsView{
		APIHost:          s.APIHost,
		APIPort:          s.APIPort,
		ScanWindowMS:     s.ScanWindowMS,
		ConnectTimeoutMS: s.ConnectTimeoutMS,
		ConnectAttempts:  s.ConnectAttempts,
		BackoffBaseMS:    s.BackoffBaseMS,
		CallBudgetMS:     s.CallBudgetMS,
		Theme:            s.Theme,
	}
}
