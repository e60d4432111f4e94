package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openlh/lighthoused/pkg/api"
	"github.com/openlh/lighthoused/pkg/api/schema"
	"github.com/openlh/lighthoused/pkg/bluetooth"
	"github.com/openlh/lighthoused/pkg/db"
	"github.com/openlh/lighthoused/pkg/lighthouse"
	"github.com/openlh/lighthoused/pkg/steamvr"
)

// @title           Lighthoused API
// @version         1.0
// @description     REST API for discovering and power-managing SteamVR Lighthouse base stations

// @host      127.0.0.1:8271
// @BasePath  /api/v1
// @schemes   http

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/lighthoused/lighthoused.db)")
	flag.Parse()

	ctx := context.Background()

	// Open database
	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	// Run migrations
	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Bootstrap if needed (first run)
	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check bootstrap status")
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := database.Bootstrap(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap database")
		}
		log.Info().Msg("Database bootstrapped successfully")
	}

	// Load settings
	settingsStore := database.Settings()
	settings, err := settingsStore.Get(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}

	log.Info().
		Str("api_address", settings.Address()).
		Dur("scan_window", settings.ScanWindow()).
		Int("connect_attempts", settings.ConnectAttempts).
		Msg("Settings loaded")

	// Build the orchestrator on the host adapter; fall back to NullController
	// when no adapter is usable so the registry endpoints keep working.
	var controller lighthouse.Controller
	var eventSubscriber lighthouse.EventSubscriber

	transport := bluetooth.New()
	if transport.Available() {
		orchestrator := lighthouse.NewOrchestrator(transport, database.Registry(), lighthouse.Config{
			ScanWindow:      settings.ScanWindow(),
			ConnectTimeout:  settings.ConnectTimeout(),
			ConnectAttempts: settings.ConnectAttempts,
			BackoffBase:     settings.BackoffBase(),
			CallBudget:      settings.CallBudget(),
		})
		defer orchestrator.Close()
		controller = orchestrator
		eventSubscriber = orchestrator
	} else {
		log.Warn().Msg("Bluetooth adapter unavailable, using null controller")
		controller = lighthouse.NewNullController()
		eventSubscriber = lighthouse.NewNullEventSubscriber()
	}

	bridge := steamvr.New(controller)
	validator := schema.NewValidator()

	// Create and start API router
	router := api.NewRouter(controller, eventSubscriber, bridge, settingsStore, validator)

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
		os.Exit(0)
	}()

	// Start server
	addr := settings.Address()
	log.Info().Str("address", addr).Msg("Starting API server")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
