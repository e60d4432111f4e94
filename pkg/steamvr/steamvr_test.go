package steamvr

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// fakeRegistrar records vrpathreg invocations.
type fakeRegistrar struct {
	manifests   []string
	addCalls    int
	removeCalls int
	showErr     error
}

func (f *fakeRegistrar) AddManifest(path string) error {
	f.addCalls++
	f.manifests = append(f.manifests, path)
	return nil
}

func (f *fakeRegistrar) RemoveManifest(path string) error {
	f.removeCalls++
	out := f.manifests[:0]
	for _, m := range f.manifests {
		if m != path {
			out = append(out, m)
		}
	}
	f.manifests = out
	return nil
}

func (f *fakeRegistrar) Show() (string, error) {
	if f.showErr != nil {
		return "", f.showErr
	}
	s := ""
	for _, m := range f.manifests {
		s += AppKey + " " + m + "\n"
	}
	return s, nil
}

// fakeController counts power calls.
type fakeController struct {
	lighthouse.NullController
	powerOnCalls int
	standbyCalls int
}

func (f *fakeController) PowerOnAll(ctx context.Context) ([]lighthouse.DeviceResult, error) {
	f.powerOnCalls++
	return []lighthouse.DeviceResult{}, nil
}

func (f *fakeController) StandbyAll(ctx context.Context) ([]lighthouse.DeviceResult, error) {
	f.standbyCalls++
	return []lighthouse.DeviceResult{}, nil
}

func testBridge(t *testing.T) (*Bridge, *fakeRegistrar, *fakeController) {
	t.Helper()
	controller := &fakeController{}
	reg := &fakeRegistrar{}
	b := New(controller)
	b.reg = reg
	b.manifestPath = filepath.Join(t.TempDir(), "steamvr", manifestFilename)
	return b, reg, controller
}

func TestRegister_WritesManifestAndRegisters(t *testing.T) {
	b, reg, _ := testBridge(t)

	if err := b.Register(); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if reg.addCalls != 1 {
		t.Fatalf("expected 1 addmanifest call, got %d", reg.addCalls)
	}

	registered, err := b.Status()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !registered {
		t.Fatal("expected registered after Register")
	}
}

func TestRegister_Idempotent(t *testing.T) {
	b, reg, _ := testBridge(t)

	if err := b.Register(); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := b.Register(); err != nil {
		t.Fatalf("second register failed: %v", err)
	}

	if reg.addCalls != 1 {
		t.Fatalf("expected exactly 1 addmanifest call, got %d", reg.addCalls)
	}
	if len(reg.manifests) != 1 {
		t.Fatalf("expected exactly 1 registration record, got %d", len(reg.manifests))
	}
}

func TestUnregister_Idempotent(t *testing.T) {
	b, reg, _ := testBridge(t)

	// Unregister with nothing registered is a no-op success
	if err := b.Unregister(); err != nil {
		t.Fatalf("unregister on empty state failed: %v", err)
	}
	if reg.removeCalls != 0 {
		t.Fatalf("expected no removemanifest call, got %d", reg.removeCalls)
	}

	if err := b.Register(); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := b.Unregister(); err != nil {
		t.Fatalf("unregister failed: %v", err)
	}

	registered, err := b.Status()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if registered {
		t.Fatal("expected unregistered after Unregister")
	}
}

func TestStatus_RecordUnreadable(t *testing.T) {
	b, reg, _ := testBridge(t)
	reg.showErr = errors.New("vrpathreg exploded")

	if _, err := b.Status(); !errors.Is(err, ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", err)
	}
}

func TestOnRuntimeStarted_PowersOn(t *testing.T) {
	b, _, controller := testBridge(t)

	if _, err := b.OnRuntimeStarted(context.Background()); err != nil {
		t.Fatalf("hook failed: %v", err)
	}
	if controller.powerOnCalls != 1 {
		t.Fatalf("expected 1 power-on call, got %d", controller.powerOnCalls)
	}
	if controller.standbyCalls != 0 {
		t.Fatalf("startup hook must not touch standby, got %d calls", controller.standbyCalls)
	}
}

func TestOnRuntimeStopped_StandsBy(t *testing.T) {
	b, _, controller := testBridge(t)

	if _, err := b.OnRuntimeStopped(context.Background()); err != nil {
		t.Fatalf("hook failed: %v", err)
	}
	if controller.standbyCalls != 1 {
		t.Fatalf("expected 1 standby call, got %d", controller.standbyCalls)
	}
}

func TestRuntimeFromPathsFile_StringAndArray(t *testing.T) {
	dir := t.TempDir()

	// The "runtime" field has shipped as both a string and an array
	if got := runtimeFromPathsJSON([]byte(`{"runtime": "` + escape(dir) + `"}`)); got != dir {
		t.Errorf("string form: expected %q, got %q", dir, got)
	}
	if got := runtimeFromPathsJSON([]byte(`{"runtime": ["` + escape(dir) + `", "/nonexistent"]}`)); got != dir {
		t.Errorf("array form: expected %q, got %q", dir, got)
	}
	if got := runtimeFromPathsJSON([]byte(`{"runtime": []}`)); got != "" {
		t.Errorf("empty array: expected no runtime, got %q", got)
	}
	if got := runtimeFromPathsJSON([]byte(`not json`)); got != "" {
		t.Errorf("malformed file: expected no runtime, got %q", got)
	}
}

func escape(s string) string {
	out := ""
	for _, r := range s {
		if r == '\\' {
			out += `\\`
			continue
		}
		out += string(r)
	}
	return out
}
