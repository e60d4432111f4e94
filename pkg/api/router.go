package api

import (
	"github.com/gin-gonic/gin"

	"github.com/openlh/lighthoused/pkg/api/handlers"
	"github.com/openlh/lighthoused/pkg/api/schema"
	"github.com/openlh/lighthoused/pkg/db"
	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine     *gin.Engine
	controller lighthouse.Controller
	subscriber lighthouse.EventSubscriber
	bridge     handlers.Registration
	settings   db.SettingsStore
	validator  *schema.Validator
}

// NewRouter creates a new API router
func NewRouter(
	controller lighthouse.Controller,
	subscriber lighthouse.EventSubscriber,
	bridge handlers.Registration,
	settings db.SettingsStore,
	validator *schema.Validator,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:     engine,
		controller: controller,
		subscriber: subscriber,
		bridge:     bridge,
		settings:   settings,
		validator:  validator,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.controller)
	r.engine.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		// Health
		v1.GET("/health", healthHandler.Health)

		// Devices
		devicesHandler := handlers.NewDevicesHandler(r.controller)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.DELETE("", devicesHandler.ClearDevices)
			devices.POST("/scan", devicesHandler.ScanDevices)
		}

		// Power transitions
		powerHandler := handlers.NewPowerHandler(r.controller, r.subscriber, r.validator)
		power := v1.Group("/power")
		{
			power.POST("", powerHandler.Transition)
			power.GET("/events", powerHandler.Events)
		}

		// SteamVR registration
		steamvrHandler := handlers.NewSteamVRHandler(r.bridge, r.validator)
		steamvr := v1.Group("/steamvr")
		{
			steamvr.GET("", steamvrHandler.GetRegistration)
			steamvr.PUT("", steamvrHandler.SetRegistration)
		}

		// Settings
		settingsHandler := handlers.NewSettingsHandler(r.settings, r.validator)
		settings := v1.Group("/settings")
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PATCH("", settingsHandler.PatchSettings)
		}
	}
}

// Engine exposes the underlying Gin engine, primarily for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
