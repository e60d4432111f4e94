package lighthouse

import "errors"

var (
	// ErrAdapterUnavailable indicates no usable Bluetooth adapter. It is the
	// only error that aborts a whole orchestration call.
	ErrAdapterUnavailable = errors.New("bluetooth adapter unavailable")

	// ErrConnectTimeout indicates a connection attempt timed out.
	ErrConnectTimeout = errors.New("connection timed out")

	// ErrUnreachable indicates a device could not be reached.
	ErrUnreachable = errors.New("device unreachable")

	// ErrCharacteristicNotFound indicates the device exposes no writable
	// power characteristic. Not retried within the same call.
	ErrCharacteristicNotFound = errors.New("power characteristic not found")

	// ErrWriteRejected indicates the device refused the power command.
	// Not retried within the same call.
	ErrWriteRejected = errors.New("write rejected by device")

	// ErrNoDevices indicates neither the registry nor a live scan produced
	// any base stations. Callers decide whether this is an error condition.
	ErrNoDevices = errors.New("no base stations found")
)

// IsTerminalWriteError reports whether err rules out further retries for the
// device within the current call.
func IsTerminalWriteError(err error) bool {
	return errors.Is(err, ErrCharacteristicNotFound) || errors.Is(err, ErrWriteRejected)
}
