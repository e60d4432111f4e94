package steamvr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// manifest is the .vrmanifest document handed to vrpathreg. The arguments
// make SteamVR invoke this binary with the lifecycle flags on start and
// auto-launch keeps the hook registered across runtime restarts.
type manifest struct {
	SourceType   string        `json:"source"`
	Applications []manifestApp `json:"applications"`
}

type manifestApp struct {
	AppKey             string                       `json:"app_key"`
	LaunchType         string                       `json:"launch_type"`
	BinaryPathWindows  string                       `json:"binary_path_windows,omitempty"`
	BinaryPathLinux    string                       `json:"binary_path_linux,omitempty"`
	Arguments          string                       `json:"arguments"`
	AutoLaunch         bool                         `json:"auto_launch"`
	IsDashboardOverlay bool                         `json:"is_dashboard_overlay"`
	Strings            map[string]map[string]string `json:"strings"`
}

// writeManifest regenerates the manifest next to the binary so the recorded
// binary path always matches the running executable. Caller holds b.mu.
func (b *Bridge) writeManifest() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("%w: locate executable: %v", ErrRegistration, err)
	}

	app := manifestApp{
		AppKey:     AppKey,
		LaunchType: "binary",
		Arguments:  "--steamvr-started",
		AutoLaunch: true,
		Strings: map[string]map[string]string{
			"en_us": {
				"name":        "Lighthouse Power Management",
				"description": "Powers base stations on and off with SteamVR",
			},
		},
	}
	if runtime.GOOS == "windows" {
		app.BinaryPathWindows = exe
	} else {
		app.BinaryPathLinux = exe
	}

	doc := manifest{
		SourceType:   "builtin",
		Applications: []manifestApp{app},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode manifest: %v", ErrRegistration, err)
	}

	if err := os.MkdirAll(filepath.Dir(b.manifestPath), 0755); err != nil {
		return fmt.Errorf("%w: create manifest directory: %v", ErrRegistration, err)
	}
	if err := os.WriteFile(b.manifestPath, data, 0644); err != nil {
		return fmt.Errorf("%w: write manifest: %v", ErrRegistration, err)
	}
	return nil
}
