package types

import "time"

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Adapter   string    `json:"adapter"`
	Timestamp time.Time `json:"timestamp"`
}

// DeviceView is one known base station with its transient status, when one
// has been observed this session.
type DeviceView struct {
	Address  string    `json:"address"`
	Name     string    `json:"name"`
	LastSeen time.Time `json:"last_seen"`
	Status   string    `json:"status,omitempty"`
}

// ListDevicesResponse is returned from GET /devices and POST /devices/scan
type ListDevicesResponse struct {
	Devices []DeviceView `json:"devices"`
	Count   int          `json:"count"`
}

// PowerResultView is one device's outcome of a power transition.
type PowerResultView struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// PowerResponse is returned from POST /power. Updated counts the devices
// that reached the requested state; the rest are listed as unreachable.
type PowerResponse struct {
	Command string            `json:"command"`
	Updated int               `json:"updated"`
	Total   int               `json:"total"`
	Devices []PowerResultView `json:"devices"`
}

// RegistrationResponse is returned from GET /steamvr and PUT /steamvr
type RegistrationResponse struct {
	Registered bool `json:"registered"`
}

// SettingsView is the settings document exchanged on GET/PATCH /settings
type SettingsView struct {
	APIHost          string `json:"api_host"`
	APIPort          int    `json:"api_port"`
	ScanWindowMS     int    `json:"scan_window_ms"`
	ConnectTimeoutMS int    `json:"connect_timeout_ms"`
	ConnectAttempts  int    `json:"connect_attempts"`
	BackoffBaseMS    int    `json:"backoff_base_ms"`
	CallBudgetMS     int    `json:"call_budget_ms"`
	Theme            string `json:"theme"`
}
