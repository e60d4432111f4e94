// Package steamvr bridges SteamVR's lifecycle into power transitions: it
// registers this application in SteamVR's manifest store so the runtime
// launches it on startup and shutdown, and it maps those hooks onto the
// orchestrator's power operations.
package steamvr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// AppKey identifies this application inside SteamVR's manifest registry.
const AppKey = "openlh.lighthoused"

const manifestFilename = "lighthoused.vrmanifest"

// DefaultHookTimeout bounds OnRuntimeStarted/OnRuntimeStopped. The hooks run
// on SteamVR's startup/shutdown critical path and must not block it.
const DefaultHookTimeout = 45 * time.Second

var (
	// ErrRuntimeNotFound indicates no SteamVR installation could be located.
	ErrRuntimeNotFound = errors.New("steamvr installation not found")

	// ErrRegistration indicates the external registration record could not
	// be read or written. It affects registration calls only, never power
	// operations.
	ErrRegistration = errors.New("steamvr registration failed")
)

// registrar abstracts SteamVR's vrpathreg tool so the bridge is testable.
type registrar interface {
	AddManifest(path string) error
	RemoveManifest(path string) error
	// Show returns the raw manifest listing.
	Show() (string, error)
}

// Bridge owns the registration state and the runtime lifecycle hooks. All
// access to the external registration record is serialized through one mutex
// so two call paths never race on the same host-global state.
type Bridge struct {
	controller lighthouse.Controller

	mu           sync.Mutex
	reg          registrar
	manifestPath string
	hookTimeout  time.Duration
}

// New creates a Bridge. The SteamVR installation is located lazily on the
// first registration call.
func New(controller lighthouse.Controller) *Bridge {
	return &Bridge{
		controller:  controller,
		hookTimeout: DefaultHookTimeout,
	}
}

// ensureRegistrar locates the SteamVR runtime and this binary's manifest
// path. Caller holds b.mu.
func (b *Bridge) ensureRegistrar() error {
	if b.reg != nil {
		return nil
	}

	runtimeDir, err := findRuntimeDir()
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("%w: locate executable: %v", ErrRegistration, err)
	}

	b.reg = &vrpathreg{exe: vrpathregPath(runtimeDir)}
	b.manifestPath = filepath.Join(filepath.Dir(exe), "steamvr", manifestFilename)
	return nil
}

// Register idempotently registers this application with SteamVR. Calling it
// when already registered is a no-op success.
func (b *Bridge) Register() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureRegistrar(); err != nil {
		return err
	}

	registered, err := b.statusLocked()
	if err != nil {
		return err
	}
	if registered {
		log.Info().Msg("Already registered with SteamVR")
		return nil
	}

	if err := b.writeManifest(); err != nil {
		return err
	}

	if err := b.reg.AddManifest(b.manifestPath); err != nil {
		return fmt.Errorf("%w: addmanifest: %v", ErrRegistration, err)
	}

	log.Info().Str("manifest", b.manifestPath).Msg("Registered with SteamVR")
	return nil
}

// Unregister idempotently removes this application's registration. A no-op
// if absent.
func (b *Bridge) Unregister() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureRegistrar(); err != nil {
		return err
	}

	registered, err := b.statusLocked()
	if err != nil {
		return err
	}
	if !registered {
		return nil
	}

	if err := b.reg.RemoveManifest(b.manifestPath); err != nil {
		return fmt.Errorf("%w: removemanifest: %v", ErrRegistration, err)
	}

	log.Info().Msg("Unregistered from SteamVR")
	return nil
}

// Status reads the current registration state from the external record.
func (b *Bridge) Status() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureRegistrar(); err != nil {
		return false, err
	}
	return b.statusLocked()
}

func (b *Bridge) statusLocked() (bool, error) {
	out, err := b.reg.Show()
	if err != nil {
		return false, fmt.Errorf("%w: show: %v", ErrRegistration, err)
	}
	return strings.Contains(out, AppKey), nil
}

// OnRuntimeStarted powers on all base stations. It runs under a bounded
// timeout and returns best-effort partial results rather than blocking
// SteamVR's startup.
func (b *Bridge) OnRuntimeStarted(ctx context.Context) ([]lighthouse.DeviceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.hookTimeout)
	defer cancel()

	log.Info().Msg("SteamVR started, powering on base stations")
	return b.controller.PowerOnAll(ctx)
}

// OnRuntimeStopped puts all base stations in standby, under the same bounded
// timeout as OnRuntimeStarted.
func (b *Bridge) OnRuntimeStopped(ctx context.Context) ([]lighthouse.DeviceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.hookTimeout)
	defer cancel()

	log.Info().Msg("SteamVR stopped, putting base stations in standby")
	return b.controller.StandbyAll(ctx)
}
