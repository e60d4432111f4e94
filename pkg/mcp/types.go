package mcp

import (
	"time"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status (healthy or degraded)"`
	Adapter   string `json:"adapter" jsonschema:"description=Bluetooth adapter availability"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- List / Scan Devices Tools ---

// DeviceInfo represents a base station in tool outputs
type DeviceInfo struct {
	Address  string `json:"address" jsonschema:"description=Bluetooth address of the base station"`
	Name     string `json:"name" jsonschema:"description=Advertised name (LHB- prefixed)"`
	LastSeen string `json:"last_seen" jsonschema:"description=When the device was last observed in a scan"`
	Status   string `json:"status,omitempty" jsonschema:"description=Last known power status this session"`
}

// ListDevicesOutput is the output for the list_devices and scan_devices tools
type ListDevicesOutput struct {
	Devices []DeviceInfo `json:"devices" jsonschema:"description=Known base stations"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// --- Power Tools ---

// PowerResultInfo is one device's outcome of a power transition
type PowerResultInfo struct {
	Address string `json:"address" jsonschema:"description=Bluetooth address"`
	Name    string `json:"name" jsonschema:"description=Device name"`
	Status  string `json:"status" jsonschema:"description=Resulting power status"`
	Error   string `json:"error,omitempty" jsonschema:"description=Failure detail when the device could not be updated"`
}

// PowerOutput is the output for the power_on_all and standby_all tools
type PowerOutput struct {
	Command string            `json:"command" jsonschema:"description=The requested transition"`
	Updated int               `json:"updated" jsonschema:"description=Devices that reached the requested state"`
	Total   int               `json:"total" jsonschema:"description=Devices attempted"`
	Devices []PowerResultInfo `json:"devices" jsonschema:"description=Per-device outcomes"`
}

// --- Clear Devices Tool ---

// ClearDevicesOutput is the output for the clear_devices tool
type ClearDevicesOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the registry was cleared"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- SteamVR Registration Tools ---

// RegistrationOutput is the output for the SteamVR registration tools
type RegistrationOutput struct {
	Registered bool   `json:"registered" jsonschema:"description=Whether automatic power management is registered with SteamVR"`
	Message    string `json:"message,omitempty" jsonschema:"description=Status message"`
}

// --- Helper conversions ---

// DeviceToInfo converts a lighthouse.Device to DeviceInfo
func DeviceToInfo(d lighthouse.Device, status lighthouse.Status) DeviceInfo {
	info := DeviceInfo{
		Address:  d.Address,
		Name:     d.Name,
		LastSeen: d.LastSeen.UTC().Format(time.RFC3339),
	}
	if status != "" {
		info.Status = string(status)
	}
	return info
}
