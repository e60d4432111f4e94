//go:build !linux && !darwin

package bluetooth

import (
	"errors"

	"github.com/go-ble/ble"
)

func newDevice() (ble.Device, error) {
	return nil, errors.New("no BLE support on this platform")
}
