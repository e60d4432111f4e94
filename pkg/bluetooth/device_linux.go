//go:build linux

package bluetooth

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// newDevice opens the default HCI device through BlueZ.
func newDevice() (ble.Device, error) {
	return linux.NewDevice()
}
