//go:build darwin

package bluetooth

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/darwin"
)

// newDevice opens the CoreBluetooth central.
func newDevice() (ble.Device, error) {
	return darwin.NewDevice()
}
