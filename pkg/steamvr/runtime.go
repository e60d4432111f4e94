package steamvr

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// The OpenVR paths file records where the active runtime lives. An explicit
// VR_OVERRIDE wins over it, matching OpenVR's own lookup order for dev
// overrides.
const vrOverrideEnv = "VR_OVERRIDE"

// findRuntimeDir locates the SteamVR installation: the openvrpaths.vrpath
// record first, then VR_OVERRIDE, then the stock install locations.
func findRuntimeDir() (string, error) {
	if dir := runtimeFromPathsFile(openvrPathsFile()); dir != "" {
		return dir, nil
	}

	if override := os.Getenv(vrOverrideEnv); override != "" {
		// May point at a directory holding openvrpaths.vrpath or directly
		// at the runtime.
		if dir := runtimeFromPathsFile(filepath.Join(override, "openvrpaths.vrpath")); dir != "" {
			return dir, nil
		}
		if info, err := os.Stat(override); err == nil && info.IsDir() {
			return override, nil
		}
	}

	for _, dir := range defaultInstallDirs() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	return "", ErrRuntimeNotFound
}

// openvrPathsFile returns the per-user openvrpaths.vrpath location.
func openvrPathsFile() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "openvr", "openvrpaths.vrpath")
		}
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return ""
			}
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, "openvr", "openvrpaths.vrpath")
	}
	return ""
}

// runtimeFromPathsFile reads the "runtime" entry of an openvrpaths.vrpath
// document. The field is a string in old records and an array in new ones.
func runtimeFromPathsFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return runtimeFromPathsJSON(data)
}

// runtimeFromPathsJSON extracts the first existing runtime directory from a
// raw openvrpaths.vrpath document.
func runtimeFromPathsJSON(data []byte) string {
	var doc struct {
		Runtime json.RawMessage `json:"runtime"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.Runtime) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(doc.Runtime, &single); err == nil {
		if dirExists(single) {
			return single
		}
		return ""
	}

	var many []string
	if err := json.Unmarshal(doc.Runtime, &many); err == nil {
		for _, dir := range many {
			if dirExists(dir) {
				return dir
			}
		}
	}
	return ""
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// defaultInstallDirs returns the stock SteamVR install locations.
func defaultInstallDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files (x86)\Steam\steamapps\common\SteamVR`,
		}
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{
			filepath.Join(home, ".local", "share", "Steam", "steamapps", "common", "SteamVR"),
			filepath.Join(home, ".steam", "steam", "steamapps", "common", "SteamVR"),
		}
	}
}

// vrpathregPath returns the vrpathreg tool inside a runtime directory.
func vrpathregPath(runtimeDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(runtimeDir, "bin", "win64", "vrpathreg.exe")
	}
	return filepath.Join(runtimeDir, "bin", "vrpathreg.sh")
}

// vrpathreg shells out to SteamVR's manifest registry tool.
type vrpathreg struct {
	exe string
}

func (v *vrpathreg) AddManifest(path string) error {
	return v.run("addmanifest", path)
}

func (v *vrpathreg) RemoveManifest(path string) error {
	return v.run("removemanifest", path)
}

func (v *vrpathreg) Show() (string, error) {
	out, err := exec.Command(v.exe, "show").CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (v *vrpathreg) run(args ...string) error {
	out, err := exec.Command(v.exe, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return &toolError{msg: msg, err: err}
		}
		return err
	}
	return nil
}

// toolError keeps vrpathreg's own output in the error chain.
type toolError struct {
	msg string
	err error
}

func (e *toolError) Error() string { return e.msg }
func (e *toolError) Unwrap() error { return e.err }
