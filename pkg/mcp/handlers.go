package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	adapterStatus := "unavailable"
	if s.controller.IsAvailable() {
		adapterStatus = "available"
	}

	status := "healthy"
	if adapterStatus != "available" {
		status = "degraded"
	}

	out := GetHealthOutput{
		Status:    status,
		Adapter:   adapterStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.controller.GetDevices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(s.deviceList(devices))), nil
}

func (s *Server) handleScanDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.controller.ScanForDevices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(s.deviceList(devices))), nil
}

func (s *Server) handlePowerOnAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.controller.PowerOnAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("power on failed: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(powerOutput("power_on", results))), nil
}

func (s *Server) handleStandbyAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.controller.StandbyAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("standby failed: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(powerOutput("standby", results))), nil
}

func (s *Server) handleClearDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.controller.ClearSavedDevices(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear devices: %s", err)), nil
	}

	out := ClearDevicesOutput{
		Success: true,
		Message: "Saved base stations cleared",
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetSteamVRRegistration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	registered, err := s.bridge.Status()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read registration: %s", err)), nil
	}

	out := RegistrationOutput{Registered: registered}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSetSteamVRRegistration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, ok := request.GetArguments()["enabled"]
	if !ok || v == nil {
		return mcp.NewToolResultError(`required parameter "enabled" is missing`), nil
	}
	enabled, ok := v.(bool)
	if !ok {
		return mcp.NewToolResultError(`parameter "enabled" must be a boolean`), nil
	}

	var err error
	var msg string
	if enabled {
		err = s.bridge.Register()
		msg = "Registered with SteamVR"
	} else {
		err = s.bridge.Unregister()
		msg = "Unregistered from SteamVR"
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update registration: %s", err)), nil
	}

	out := RegistrationOutput{
		Registered: enabled,
		Message:    msg,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

func (s *Server) deviceList(devices []lighthouse.Device) ListDevicesOutput {
	statuses := s.controller.StatusSnapshot()
	infos := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		infos = append(infos, DeviceToInfo(d, statuses[d.Address]))
	}
	return ListDevicesOutput{
		Devices: infos,
		Count:   len(infos),
	}
}

func powerOutput(command string, results []lighthouse.DeviceResult) PowerOutput {
	out := PowerOutput{
		Command: command,
		Total:   len(results),
		Devices: make([]PowerResultInfo, 0, len(results)),
	}
	for _, r := range results {
		info := PowerResultInfo{
			Address: r.Device.Address,
			Name:    r.Device.Name,
			Status:  string(r.Status),
		}
		if r.Err != nil {
			info.Error = r.Err.Error()
		} else {
			out.Updated++
		}
		out.Devices = append(out.Devices, info)
	}
	return out
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
