package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlh/lighthoused/pkg/api/schema"
	"github.com/openlh/lighthoused/pkg/api/types"
	"github.com/openlh/lighthoused/pkg/steamvr"
)

// Registration is the SteamVR registration surface consumed by the handler.
type Registration interface {
	Register() error
	Unregister() error
	Status() (bool, error)
}

// SteamVRHandler handles SteamVR registration endpoints
type SteamVRHandler struct {
	bridge    Registration
	validator *schema.Validator
}

// NewSteamVRHandler creates a new SteamVR handler
func NewSteamVRHandler(bridge Registration, validator *schema.Validator) *SteamVRHandler {
	return &SteamVRHandler{bridge: bridge, validator: validator}
}

// GetRegistration handles GET /steamvr
// @Summary      SteamVR registration status
// @Description  Reads whether this application is registered for automatic power management
// @Tags         steamvr
// @Produce      json
// @Success      200  {object}  types.RegistrationResponse
// @Failure      503  {object}  types.ErrorResponse  "SteamVR installation not found"
// @Failure      500  {object}  types.ErrorResponse  "Registration record inaccessible"
// @Router       /steamvr [get]
func (h *SteamVRHandler) GetRegistration(c *gin.Context) {
	registered, err := h.bridge.Status()
	if err != nil {
		writeRegistrationError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.RegistrationResponse{Registered: registered})
}

// SetRegistration handles PUT /steamvr
// @Summary      Enable or disable SteamVR registration
// @Description  Idempotently registers or unregisters this application with SteamVR
// @Tags         steamvr
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "{\"enabled\": bool}"
// @Success      200      {object}  types.RegistrationResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      503      {object}  types.ErrorResponse  "SteamVR installation not found"
// @Failure      500      {object}  types.ErrorResponse  "Registration record inaccessible"
// @Router       /steamvr [put]
func (h *SteamVRHandler) SetRegistration(c *gin.Context) {
	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.validator.Validate(schema.RegistrationRequest, req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	enabled, _ := req["enabled"].(bool)

	var err error
	if enabled {
		err = h.bridge.Register()
	} else {
		err = h.bridge.Unregister()
	}
	if err != nil {
		writeRegistrationError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.RegistrationResponse{Registered: enabled})
}

func writeRegistrationError(c *gin.Context, err error) {
	if errors.Is(err, steamvr.ErrRuntimeNotFound) {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{
			Error:   "steamvr_not_found",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{
		Error:   "registration_error",
		Message: err.Error(),
	})
}
