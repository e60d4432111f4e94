// Package lighthouse contains the device model and the power orchestration
// engine for SteamVR Lighthouse base stations: registry merging, concurrent
// per-device power transitions with retry and backoff, and status event
// fan-out for the boundary layers.
package lighthouse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry is the persisted device set consumed by the Orchestrator. The
// SQLite-backed implementation lives in pkg/db.
type Registry interface {
	List(ctx context.Context) ([]Device, error)
	Merge(ctx context.Context, discovered []Advertisement) ([]Device, error)
	Clear(ctx context.Context) error
}

// Config holds the orchestration tunables. The numeric values are not
// load-bearing for correctness; they come from the settings store.
type Config struct {
	ScanWindow      time.Duration // advertisement scan window per call
	ConnectTimeout  time.Duration // per connection attempt
	ConnectAttempts int           // bounded retries per device
	BackoffBase     time.Duration // doubled after each failed attempt
	CallBudget      time.Duration // total budget for one orchestration call
}

// DefaultConfig returns the built-in tunables, used when the settings store
// is unavailable.
func DefaultConfig() Config {
	return Config{
		ScanWindow:      5 * time.Second,
		ConnectTimeout:  10 * time.Second,
		ConnectAttempts: 3,
		BackoffBase:     500 * time.Millisecond,
		CallBudget:      90 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ScanWindow <= 0 {
		c.ScanWindow = d.ScanWindow
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = d.ConnectAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.CallBudget <= 0 {
		c.CallBudget = d.CallBudget
	}
	return c
}

// transition is one in-flight per-device power transition. Later requests
// for the same address join it instead of opening a second connection.
type transition struct {
	done   chan struct{}
	status Status
	err    error
}

// Orchestrator implements Controller and EventSubscriber on top of a
// Transport and a Registry.
type Orchestrator struct {
	transport Transport
	registry  Registry
	cfg       Config
	tracker   *statusTracker

	inflightMu sync.Mutex
	inflight   map[string]*transition
}

// NewOrchestrator creates an Orchestrator. Zero fields of cfg fall back to
// the built-in defaults.
func NewOrchestrator(transport Transport, registry Registry, cfg Config) *Orchestrator {
	return &Orchestrator{
		transport: transport,
		registry:  registry,
		cfg:       cfg.withDefaults(),
		tracker:   newStatusTracker(),
		inflight:  make(map[string]*transition),
	}
}

// ScanForDevices runs a bounded scan and merges the results into the
// registry, returning the snapshot after the merge.
func (o *Orchestrator) ScanForDevices(ctx context.Context) ([]Device, error) {
	advs, err := o.transport.Scan(ctx, o.cfg.ScanWindow)
	if err != nil {
		return nil, err
	}

	devices, err := o.registry.Merge(ctx, advs)
	if err != nil {
		// Persistence trouble degrades to the live scan; it never fails the call.
		log.Warn().Err(err).Msg("Registry unavailable, returning scan results only")
		return devicesFromAdvertisements(advs), nil
	}
	return devices, nil
}

// GetDevices returns the registry snapshot without scanning. A corrupt or
// missing store reads as an empty registry.
func (o *Orchestrator) GetDevices(ctx context.Context) ([]Device, error) {
	devices, err := o.registry.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Registry unavailable, reporting empty device set")
		return []Device{}, nil
	}
	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// PowerOnAll powers on every known and freshly discovered base station.
func (o *Orchestrator) PowerOnAll(ctx context.Context) ([]DeviceResult, error) {
	return o.run(ctx, CommandPowerOn)
}

// StandbyAll puts every known and freshly discovered base station in standby.
func (o *Orchestrator) StandbyAll(ctx context.Context) ([]DeviceResult, error) {
	return o.run(ctx, CommandStandby)
}

// ClearSavedDevices empties the registry.
func (o *Orchestrator) ClearSavedDevices(ctx context.Context) error {
	return o.registry.Clear(ctx)
}

// StatusSnapshot returns the transient status of every device probed in this
// session.
func (o *Orchestrator) StatusSnapshot() map[string]Status {
	return o.tracker.snapshot()
}

// IsAvailable reports whether a Bluetooth adapter can be used.
func (o *Orchestrator) IsAvailable() bool {
	return o.transport.Available()
}

// Close releases the transport.
func (o *Orchestrator) Close() {
	if err := o.transport.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close Bluetooth transport")
	}
}

// Subscribe returns a channel receiving status change events.
func (o *Orchestrator) Subscribe() chan StatusEvent {
	return o.tracker.subscribe()
}

// Unsubscribe removes a subscription and closes its channel.
func (o *Orchestrator) Unsubscribe(ch chan StatusEvent) {
	o.tracker.unsubscribe(ch)
}

// run is the shared algorithm behind PowerOnAll and StandbyAll.
func (o *Orchestrator) run(ctx context.Context, cmd PowerCommand) ([]DeviceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.CallBudget)
	defer cancel()

	log.Info().Str("command", cmd.String()).Msg("Starting power transition")

	// The scan-and-merge step completes before any connection attempt, so
	// every transition task sees the freshest registry. An unusable adapter
	// is the one condition that fails the whole call.
	advs, err := o.transport.Scan(ctx, o.cfg.ScanWindow)
	if err != nil {
		return nil, err
	}

	targets, err := o.registry.Merge(ctx, advs)
	if err != nil {
		log.Warn().Err(err).Msg("Registry unavailable, acting on live scan only")
		targets = devicesFromAdvertisements(advs)
	}

	if len(targets) == 0 {
		log.Info().Msg("No base stations known or discovered")
		return []DeviceResult{}, nil
	}

	// Mark intent on the whole target set before any network activity.
	for _, d := range targets {
		o.tracker.set(d.Address, StatusTransitioning)
	}

	results := make([]DeviceResult, len(targets))
	var wg sync.WaitGroup
	for i, d := range targets {
		wg.Add(1)
		go func(i int, dev Device) {
			defer wg.Done()
			status, err := o.transitionDevice(ctx, dev.Address, cmd)
			results[i] = DeviceResult{Device: dev, Status: status, Err: err}
		}(i, d)
	}
	wg.Wait()

	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}
	log.Info().
		Str("command", cmd.String()).
		Int("updated", ok).
		Int("total", len(results)).
		Msg("Power transition finished")

	return results, nil
}

// transitionDevice runs or joins the transition for one address. At most one
// live connection attempt exists per address at any time.
func (o *Orchestrator) transitionDevice(ctx context.Context, address string, cmd PowerCommand) (Status, error) {
	o.inflightMu.Lock()
	if t, ok := o.inflight[address]; ok {
		o.inflightMu.Unlock()
		select {
		case <-t.done:
			return t.status, t.err
		case <-ctx.Done():
			return StatusUnreachable, fmt.Errorf("%w: %s: %v", ErrUnreachable, address, ctx.Err())
		}
	}
	t := &transition{done: make(chan struct{})}
	o.inflight[address] = t
	o.inflightMu.Unlock()

	t.status, t.err = o.executeTransition(ctx, address, cmd)
	o.tracker.set(address, t.status)

	o.inflightMu.Lock()
	delete(o.inflight, address)
	o.inflightMu.Unlock()
	close(t.done)

	return t.status, t.err
}

// executeTransition is the per-device state machine: a bounded self-loop on
// connecting, then a single write. Write failures are terminal; the device
// either does not speak the protocol or refused the command.
func (o *Orchestrator) executeTransition(ctx context.Context, address string, cmd PowerCommand) (Status, error) {
	backoff := o.cfg.BackoffBase
	var lastErr error

	for attempt := 1; attempt <= o.cfg.ConnectAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return StatusUnreachable, fmt.Errorf("%w: %s: budget exhausted", ErrUnreachable, address)
		}

		session, err := o.transport.Connect(ctx, address, o.cfg.ConnectTimeout)
		if err != nil {
			lastErr = err
			log.Warn().
				Str("address", address).
				Int("attempt", attempt).
				Err(err).
				Msg("Connect failed")

			if attempt < o.cfg.ConnectAttempts {
				select {
				case <-time.After(backoff):
					backoff *= 2
				case <-ctx.Done():
					return StatusUnreachable, fmt.Errorf("%w: %s: budget exhausted", ErrUnreachable, address)
				}
			}
			continue
		}

		status, err := func() (Status, error) {
			defer session.Close()
			if err := session.WritePower(cmd); err != nil {
				return StatusUnreachable, err
			}
			return cmd.TerminalStatus(), nil
		}()
		if err != nil {
			return status, err
		}
		return status, nil
	}

	return StatusUnreachable, fmt.Errorf("%w: %s: %d attempts failed: %v",
		ErrUnreachable, address, o.cfg.ConnectAttempts, lastErr)
}

func devicesFromAdvertisements(advs []Advertisement) []Device {
	now := time.Now()
	out := make([]Device, 0, len(advs))
	for _, a := range advs {
		out = append(out, Device{Address: a.Address, Name: a.Name, LastSeen: now})
	}
	return out
}
