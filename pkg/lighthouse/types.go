package lighthouse

import (
	"time"
)

// Device represents a known Lighthouse base station. The BLE address is the
// stable identity; the registry never holds two entries for the same address.
type Device struct {
	Address  string    `json:"address"`   // BLE address (platform-stable identifier)
	Name     string    `json:"name"`      // Best-known advertised name, may be stale
	LastSeen time.Time `json:"last_seen"` // Updated on every discovery
}

// Status is the transient power status of a device. It exists only in memory
// for the lifetime of the process; a device that has never been probed has no
// status entry at all.
type Status string

const (
	StatusOnline        Status = "online"
	StatusStandby       Status = "standby"
	StatusTransitioning Status = "transitioning"
	StatusUnreachable   Status = "unreachable"
)

// PowerCommand selects the payload written to the power characteristic.
// Writing either command to a device already in that state is harmless.
type PowerCommand byte

const (
	CommandStandby PowerCommand = 0x00
	CommandPowerOn PowerCommand = 0x01
)

// String returns the wire-independent name of the command.
func (c PowerCommand) String() string {
	switch c {
	case CommandPowerOn:
		return "power_on"
	case CommandStandby:
		return "standby"
	default:
		return "unknown"
	}
}

// TerminalStatus returns the status a device reaches after the command
// succeeds.
func (c PowerCommand) TerminalStatus() Status {
	if c == CommandPowerOn {
		return StatusOnline
	}
	return StatusStandby
}

// Payload returns the single-byte body written to the power characteristic.
func (c PowerCommand) Payload() []byte {
	return []byte{byte(c)}
}

// DeviceResult is one entry of an aggregated orchestration outcome. Err is
// set only for devices that ended Unreachable; the call as a whole still
// succeeds (partial failure tolerance).
type DeviceResult struct {
	Device Device `json:"device"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

// StatusEvent is published whenever a device's transient status changes.
type StatusEvent struct {
	Address   string    `json:"address"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
