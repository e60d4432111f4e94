package lighthouse

import "context"

// Controller is the command surface consumed by the HTTP, MCP and CLI
// boundaries. The Orchestrator is the real implementation; NullController
// stands in when no Bluetooth adapter is present.
type Controller interface {
	// ScanForDevices runs a bounded scan, merges the results into the
	// registry, and returns the registry snapshot after the merge.
	ScanForDevices(ctx context.Context) ([]Device, error)

	// GetDevices returns the current registry snapshot without scanning.
	GetDevices(ctx context.Context) ([]Device, error)

	// PowerOnAll transitions every known and freshly discovered base station
	// to the on state. Per-device failures are reported in the results, not
	// as a call error.
	PowerOnAll(ctx context.Context) ([]DeviceResult, error)

	// StandbyAll transitions every known and freshly discovered base station
	// to low-power standby.
	StandbyAll(ctx context.Context) ([]DeviceResult, error)

	// ClearSavedDevices empties the registry and persists the empty state.
	ClearSavedDevices(ctx context.Context) error

	// StatusSnapshot returns the transient status of every device probed in
	// this session. Devices never probed are absent.
	StatusSnapshot() map[string]Status

	// IsAvailable reports whether a Bluetooth adapter can be used.
	IsAvailable() bool

	// Close releases the underlying transport.
	Close()
}

// EventSubscriber is implemented by controllers that publish status changes.
type EventSubscriber interface {
	// Subscribe returns a channel that receives status events.
	Subscribe() chan StatusEvent

	// Unsubscribe removes a subscription and closes the channel.
	Unsubscribe(ch chan StatusEvent)
}

// NullController is a no-op controller used when no Bluetooth adapter is
// available. It lets the boundaries run in limited mode.
type NullController struct{}

// NewNullController creates a new NullController.
func NewNullController() *NullController {
	return &NullController{}
}

func (c *NullController) ScanForDevices(ctx context.Context) ([]Device, error) {
	return nil, ErrAdapterUnavailable
}

func (c *NullController) GetDevices(ctx context.Context) ([]Device, error) {
	return []Device{}, nil
}

func (c *NullController) PowerOnAll(ctx context.Context) ([]DeviceResult, error) {
	return nil, ErrAdapterUnavailable
}

func (c *NullController) StandbyAll(ctx context.Context) ([]DeviceResult, error) {
	return nil, ErrAdapterUnavailable
}

func (c *NullController) ClearSavedDevices(ctx context.Context) error {
	return nil
}

func (c *NullController) StatusSnapshot() map[string]Status {
	return map[string]Status{}
}

func (c *NullController) IsAvailable() bool {
	return false
}

func (c *NullController) Close() {}

// NullEventSubscriber is a no-op event subscriber paired with NullController.
type NullEventSubscriber struct{}

// NewNullEventSubscriber creates a new NullEventSubscriber.
func NewNullEventSubscriber() *NullEventSubscriber {
	return &NullEventSubscriber{}
}

func (s *NullEventSubscriber) Subscribe() chan StatusEvent {
	// Channel is never sent to; callers should check IsAvailable() first
	return make(chan StatusEvent)
}

func (s *NullEventSubscriber) Unsubscribe(ch chan StatusEvent) {
	close(ch)
}
