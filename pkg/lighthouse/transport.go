package lighthouse

import (
	"context"
	"time"
)

// Advertisement is one base station observed during a scan window. Scan
// results are ephemeral; they only exist to be merged into the registry.
type Advertisement struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Transport is the Bluetooth capability consumed by the Orchestrator:
// time-bounded scanning plus per-device GATT sessions. The go-ble
// implementation lives in pkg/bluetooth.
type Transport interface {
	// Scan opens a fresh scan for the given window and returns the base
	// stations observed, deduplicated by address. A missing or disabled
	// adapter yields ErrAdapterUnavailable rather than hanging.
	Scan(ctx context.Context, window time.Duration) ([]Advertisement, error)

	// Connect opens a GATT session to the device at address, bounded by
	// timeout. Fails with ErrConnectTimeout, ErrUnreachable or
	// ErrAdapterUnavailable.
	Connect(ctx context.Context, address string, timeout time.Duration) (Session, error)

	// Available reports whether a usable adapter is present.
	Available() bool

	// Close releases the adapter.
	Close() error
}

// Session is a single open GATT connection. Close must run on every exit
// path of a connection attempt so sessions never leak.
type Session interface {
	// WritePower writes the command payload to the power characteristic.
	// Fails with ErrCharacteristicNotFound or ErrWriteRejected; neither is
	// retried within the same orchestration call.
	WritePower(cmd PowerCommand) error

	// Close disconnects the session.
	Close() error
}
