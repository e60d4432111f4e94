package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openlh/lighthoused/pkg/bluetooth"
	"github.com/openlh/lighthoused/pkg/db"
	"github.com/openlh/lighthoused/pkg/lighthouse"
	"github.com/openlh/lighthoused/pkg/steamvr"
)

// Exit codes are part of the CLI contract; scripts and the SteamVR hooks
// branch on them.
const (
	exitSuccess       = 0
	exitGeneral       = 1
	exitBluetooth     = 2
	exitNoDevices     = 3
	exitCommandFailed = 4
	exitSteamVR       = 5
)

// CommandResponse is the machine-readable result printed with --json.
type CommandResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Devices   []DeviceOutcome `json:"devices,omitempty"`
	ErrorCode int             `json:"error_code"`
}

// DeviceOutcome is one device in a CommandResponse.
type DeviceOutcome struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

type options struct {
	powerOn           bool
	standby           bool
	scan              bool
	devices           bool
	jsonOut           bool
	registerSteamVR   bool
	unregisterSteamVR bool
	steamVRStarted    bool
	steamVRStopped    bool
	dbPath            string
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var opts options
	flag.BoolVar(&opts.powerOn, "poweron", false, "Power on all known and discovered base stations")
	flag.BoolVar(&opts.standby, "standby", false, "Put all known and discovered base stations into standby")
	flag.BoolVar(&opts.scan, "scan", false, "Scan for base stations and save them")
	flag.BoolVar(&opts.devices, "devices", false, "List saved base stations without scanning")
	flag.BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON on stdout")
	flag.BoolVar(&opts.registerSteamVR, "register-steamvr", false, "Register with SteamVR for automatic power management")
	flag.BoolVar(&opts.unregisterSteamVR, "unregister-steamvr", false, "Remove the SteamVR registration")
	flag.BoolVar(&opts.steamVRStarted, "steamvr-started", false, "SteamVR startup hook: power on all base stations")
	flag.BoolVar(&opts.steamVRStopped, "steamvr-stopped", false, "SteamVR shutdown hook: put all base stations into standby")
	flag.StringVar(&opts.dbPath, "db", "", "Path to database file (default: ~/.config/lighthoused/lighthoused.db)")
	flag.Parse()

	if opts.jsonOut {
		// Keep stderr quiet so scripted callers only parse stdout.
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}

	actions := 0
	for _, set := range []bool{
		opts.powerOn, opts.standby, opts.scan, opts.devices,
		opts.registerSteamVR, opts.unregisterSteamVR,
		opts.steamVRStarted, opts.steamVRStopped,
	} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		flag.Usage()
		os.Exit(exitGeneral)
	}

	os.Exit(run(opts))
}

func run(opts options) int {
	ctx := context.Background()

	database, err := db.Open(opts.dbPath)
	if err != nil {
		return emit(opts.jsonOut, CommandResponse{
			Message:   fmt.Sprintf("failed to open database: %s", err),
			ErrorCode: exitGeneral,
		})
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return emit(opts.jsonOut, CommandResponse{
			Message:   fmt.Sprintf("failed to migrate database: %s", err),
			ErrorCode: exitGeneral,
		})
	}
	if needs, err := database.NeedsBootstrap(ctx); err == nil && needs {
		if err := database.Bootstrap(ctx); err != nil {
			return emit(opts.jsonOut, CommandResponse{
				Message:   fmt.Sprintf("failed to bootstrap database: %s", err),
				ErrorCode: exitGeneral,
			})
		}
	}

	cfg := lighthouse.DefaultConfig()
	if settings, err := database.Settings().Get(ctx); err == nil {
		cfg = lighthouse.Config{
			ScanWindow:      settings.ScanWindow(),
			ConnectTimeout:  settings.ConnectTimeout(),
			ConnectAttempts: settings.ConnectAttempts,
			BackoffBase:     settings.BackoffBase(),
			CallBudget:      settings.CallBudget(),
		}
	}

	transport := bluetooth.New()
	orchestrator := lighthouse.NewOrchestrator(transport, database.Registry(), cfg)
	defer orchestrator.Close()

	bridge := steamvr.New(orchestrator)

	switch {
	case opts.scan:
		return emit(opts.jsonOut, doScan(ctx, orchestrator))
	case opts.devices:
		return emit(opts.jsonOut, doListDevices(ctx, orchestrator))
	case opts.powerOn:
		return emit(opts.jsonOut, doTransition(ctx, orchestrator, lighthouse.CommandPowerOn))
	case opts.standby:
		return emit(opts.jsonOut, doTransition(ctx, orchestrator, lighthouse.CommandStandby))
	case opts.registerSteamVR:
		return emit(opts.jsonOut, doRegistration(bridge, true))
	case opts.unregisterSteamVR:
		return emit(opts.jsonOut, doRegistration(bridge, false))
	case opts.steamVRStarted:
		return emit(opts.jsonOut, doHook(ctx, bridge, true))
	case opts.steamVRStopped:
		return emit(opts.jsonOut, doHook(ctx, bridge, false))
	}
	return exitGeneral
}

func doScan(ctx context.Context, controller lighthouse.Controller) CommandResponse {
	devices, err := controller.ScanForDevices(ctx)
	if err != nil {
		return errorResponse(err)
	}
	if len(devices) == 0 {
		return CommandResponse{
			Message:   "No base stations found",
			ErrorCode: exitNoDevices,
		}
	}
	return CommandResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d base station(s)", len(devices)),
		Devices: deviceOutcomes(devices, controller.StatusSnapshot()),
	}
}

func doListDevices(ctx context.Context, controller lighthouse.Controller) CommandResponse {
	devices, err := controller.GetDevices(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return CommandResponse{
		Success: true,
		Message: fmt.Sprintf("%d saved base station(s)", len(devices)),
		Devices: deviceOutcomes(devices, controller.StatusSnapshot()),
	}
}

func doTransition(ctx context.Context, controller lighthouse.Controller, cmd lighthouse.PowerCommand) CommandResponse {
	var results []lighthouse.DeviceResult
	var err error
	if cmd == lighthouse.CommandPowerOn {
		results, err = controller.PowerOnAll(ctx)
	} else {
		results, err = controller.StandbyAll(ctx)
	}
	if err != nil {
		return errorResponse(err)
	}
	return transitionResponse(cmd, results)
}

func doRegistration(bridge *steamvr.Bridge, enable bool) CommandResponse {
	var err error
	var msg string
	if enable {
		err = bridge.Register()
		msg = "Registered with SteamVR"
	} else {
		err = bridge.Unregister()
		msg = "Unregistered from SteamVR"
	}
	if err != nil {
		return CommandResponse{
			Message:   err.Error(),
			ErrorCode: exitSteamVR,
		}
	}
	return CommandResponse{Success: true, Message: msg}
}

func doHook(ctx context.Context, bridge *steamvr.Bridge, started bool) CommandResponse {
	var results []lighthouse.DeviceResult
	var err error
	cmd := lighthouse.CommandStandby
	if started {
		cmd = lighthouse.CommandPowerOn
		results, err = bridge.OnRuntimeStarted(ctx)
	} else {
		results, err = bridge.OnRuntimeStopped(ctx)
	}
	if err != nil {
		return errorResponse(err)
	}
	return transitionResponse(cmd, results)
}

func transitionResponse(cmd lighthouse.PowerCommand, results []lighthouse.DeviceResult) CommandResponse {
	if len(results) == 0 {
		return CommandResponse{
			Message:   "No base stations known or discovered",
			ErrorCode: exitNoDevices,
		}
	}

	outcomes := make([]DeviceOutcome, 0, len(results))
	updated := 0
	for _, r := range results {
		o := DeviceOutcome{
			Address: r.Device.Address,
			Name:    r.Device.Name,
			Status:  string(r.Status),
		}
		if r.Err != nil {
			o.Error = r.Err.Error()
		} else {
			updated++
		}
		outcomes = append(outcomes, o)
	}

	resp := CommandResponse{
		Message: fmt.Sprintf("%s: %d/%d base station(s) updated", cmd, updated, len(results)),
		Devices: outcomes,
	}
	if updated == len(results) {
		resp.Success = true
	} else {
		resp.ErrorCode = exitCommandFailed
	}
	return resp
}

func errorResponse(err error) CommandResponse {
	code := exitGeneral
	switch {
	case errors.Is(err, lighthouse.ErrAdapterUnavailable):
		code = exitBluetooth
	case errors.Is(err, lighthouse.ErrNoDevices):
		code = exitNoDevices
	case errors.Is(err, steamvr.ErrRuntimeNotFound), errors.Is(err, steamvr.ErrRegistration):
		code = exitSteamVR
	}
	return CommandResponse{
		Message:   err.Error(),
		ErrorCode: code,
	}
}

func deviceOutcomes(devices []lighthouse.Device, statuses map[string]lighthouse.Status) []DeviceOutcome {
	out := make([]DeviceOutcome, 0, len(devices))
	for _, d := range devices {
		o := DeviceOutcome{Address: d.Address, Name: d.Name}
		if s, ok := statuses[d.Address]; ok {
			o.Status = string(s)
		}
		out = append(out, o)
	}
	return out
}

// emit prints the response and returns the process exit code.
func emit(jsonOut bool, resp CommandResponse) int {
	if jsonOut {
		b, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode response: %s\n", err)
			return exitGeneral
		}
		fmt.Println(string(b))
	} else {
		fmt.Println(resp.Message)
		for _, d := range resp.Devices {
			line := fmt.Sprintf("  %s  %s", d.Address, d.Name)
			if d.Status != "" {
				line += "  [" + d.Status + "]"
			}
			if d.Error != "" {
				line += "  error: " + d.Error
			}
			fmt.Println(line)
		}
	}
	if resp.Success {
		return exitSuccess
	}
	return resp.ErrorCode
}
