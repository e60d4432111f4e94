package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// Health check
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the health status of the service and Bluetooth adapter availability"),
		),
		s.handleGetHealth,
	)

	// List devices
	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List all known base stations without scanning"),
		),
		s.handleListDevices,
	)

	// Scan devices
	s.mcpServer.AddTool(
		mcp.NewTool("scan_devices",
			mcp.WithDescription("Run a Bluetooth scan for base stations and merge the results into the saved device list"),
		),
		s.handleScanDevices,
	)

	// Power on all
	s.mcpServer.AddTool(
		mcp.NewTool("power_on_all",
			mcp.WithDescription("Power on every known and newly discovered base station. Reports per-device outcomes."),
		),
		s.handlePowerOnAll,
	)

	// Standby all
	s.mcpServer.AddTool(
		mcp.NewTool("standby_all",
			mcp.WithDescription("Put every known and newly discovered base station into standby. Reports per-device outcomes."),
		),
		s.handleStandbyAll,
	)

	// Clear devices
	s.mcpServer.AddTool(
		mcp.NewTool("clear_devices",
			mcp.WithDescription("Forget all saved base stations. A later scan repopulates the list from live discovery."),
		),
		s.handleClearDevices,
	)

	// SteamVR registration status
	s.mcpServer.AddTool(
		mcp.NewTool("get_steamvr_registration",
			mcp.WithDescription("Check whether automatic base station power management is registered with SteamVR"),
		),
		s.handleGetSteamVRRegistration,
	)

	// SteamVR registration toggle
	s.mcpServer.AddTool(
		mcp.NewTool("set_steamvr_registration",
			mcp.WithDescription("Enable or disable automatic base station power management with SteamVR"),
			mcp.WithBoolean("enabled",
				mcp.Required(),
				mcp.Description("True to register with SteamVR, false to unregister"),
			),
		),
		s.handleSetSteamVRRegistration,
	)
}
