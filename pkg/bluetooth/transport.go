// Package bluetooth implements the lighthouse.Transport capability on top of
// the go-ble stack: advertisement scanning filtered to Lighthouse base
// stations, and short-lived GATT sessions for power writes.
package bluetooth

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/rs/zerolog/log"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// Base stations advertise a local name prefixed "LHB-" and carry the Valve
// company identifier in their manufacturer data.
const (
	NamePrefix     = "LHB-"
	ManufacturerID = 0x055D
)

// GATT identifiers of the base-station power control service.
var (
	ControlServiceUUID = ble.MustParse("00001523-1212-efde-1523-785feabcd124")
	PowerCharUUID      = ble.MustParse("00001525-1212-efde-1523-785feabcd124")
)

// Transport is the go-ble backed lighthouse.Transport. The host adapter is
// opened lazily on first use; a missing adapter is reported, not retried.
type Transport struct {
	mu     sync.Mutex
	opened bool
	device ble.Device
	err    error
}

// New creates a Transport. The adapter is not touched until the first scan
// or connect.
func New() *Transport {
	return &Transport{}
}

// ensureAdapter opens the host adapter once and caches the outcome.
func (t *Transport) ensureAdapter() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opened {
		return t.err
	}
	t.opened = true

	d, err := newDevice()
	if err != nil {
		t.err = fmt.Errorf("%w: %v", lighthouse.ErrAdapterUnavailable, err)
		log.Warn().Err(err).Msg("No usable Bluetooth adapter")
		return t.err
	}

	ble.SetDefaultDevice(d)
	t.device = d
	log.Info().Msg("Bluetooth adapter opened")
	return nil
}

// Available reports whether the host adapter can be opened.
func (t *Transport) Available() bool {
	return t.ensureAdapter() == nil
}

// Close releases the adapter if it was opened.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.device == nil {
		return nil
	}
	err := t.device.Stop()
	t.device = nil
	t.opened = false
	t.err = nil
	return err
}

// Scan runs one advertisement scan for the given window and returns the base
// stations seen, deduplicated by address. Duplicate advertisements refresh
// the name so the freshest advertised name wins.
func (t *Transport) Scan(ctx context.Context, window time.Duration) ([]lighthouse.Advertisement, error) {
	if err := t.ensureAdapter(); err != nil {
		return nil, err
	}

	scanCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]lighthouse.Advertisement)
	order := make([]string, 0, 4)

	handler := func(a ble.Advertisement) {
		addr := a.Addr().String()
		name := a.LocalName()

		mu.Lock()
		defer mu.Unlock()
		if adv, ok := seen[addr]; ok {
			if name != "" && name != adv.Name {
				adv.Name = name
				seen[addr] = adv
			}
			return
		}
		seen[addr] = lighthouse.Advertisement{Address: addr, Name: name}
		order = append(order, addr)
		log.Info().Str("address", addr).Str("name", name).Msg("Found base station")
	}

	log.Info().Dur("window", window).Msg("Scanning for base stations")
	err := ble.Scan(scanCtx, true, handler, isBaseStation)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("%w: scan: %v", lighthouse.ErrAdapterUnavailable, err)
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]lighthouse.Advertisement, 0, len(order))
	for _, addr := range order {
		out = append(out, seen[addr])
	}
	return out, nil
}

// isBaseStation filters advertisements to Lighthouse base stations: the name
// prefix and the manufacturer identifier must both match.
func isBaseStation(a ble.Advertisement) bool {
	name := a.LocalName()
	if len(name) < len(NamePrefix) || name[:len(NamePrefix)] != NamePrefix {
		return false
	}
	md := a.ManufacturerData()
	if len(md) < 2 {
		return false
	}
	return binary.LittleEndian.Uint16(md[:2]) == ManufacturerID
}

// Connect dials the device at address with a bounded timeout and returns an
// open GATT session.
func (t *Transport) Connect(ctx context.Context, address string, timeout time.Duration) (lighthouse.Session, error) {
	if err := t.ensureAdapter(); err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ble.Dial(dialCtx, ble.NewAddr(address))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: dial %s", lighthouse.ErrConnectTimeout, address)
		}
		return nil, fmt.Errorf("%w: dial %s: %v", lighthouse.ErrUnreachable, address, err)
	}

	return &gattSession{client: client, address: address}, nil
}

// gattSession wraps an open ble.Client.
type gattSession struct {
	client  ble.Client
	address string
}

// WritePower discovers the control service and writes the command payload.
// The exact power characteristic is preferred; if the firmware exposes it
// elsewhere, any writable characteristic is accepted as a fallback.
func (s *gattSession) WritePower(cmd lighthouse.PowerCommand) error {
	profile, err := s.client.DiscoverProfile(true)
	if err != nil {
		return fmt.Errorf("%w: discover profile on %s: %v", lighthouse.ErrCharacteristicNotFound, s.address, err)
	}

	char := findPowerCharacteristic(profile)
	if char == nil {
		return fmt.Errorf("%w: %s", lighthouse.ErrCharacteristicNotFound, s.address)
	}

	if err := s.client.WriteCharacteristic(char, cmd.Payload(), true); err != nil {
		return fmt.Errorf("%w: %s: %v", lighthouse.ErrWriteRejected, s.address, err)
	}

	log.Info().Str("address", s.address).Str("command", cmd.String()).Msg("Power command written")
	return nil
}

// Close disconnects the session.
func (s *gattSession) Close() error {
	return s.client.CancelConnection()
}

// findPowerCharacteristic picks the characteristic to write the power
// command to. Preference order: the exact power characteristic, a writable
// characteristic inside the control service, any writable characteristic.
func findPowerCharacteristic(p *ble.Profile) *ble.Characteristic {
	var inService, anyWritable *ble.Characteristic

	for _, svc := range p.Services {
		for _, char := range svc.Characteristics {
			if char.UUID.Equal(PowerCharUUID) {
				return char
			}
			if char.Property&(ble.CharWrite|ble.CharWriteNR) == 0 {
				continue
			}
			if svc.UUID.Equal(ControlServiceUUID) && inService == nil {
				inService = char
			}
			if anyWritable == nil {
				anyWritable = char
			}
		}
	}

	if inService != nil {
		return inService
	}
	return anyWritable
}
