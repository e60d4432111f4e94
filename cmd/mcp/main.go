package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openlh/lighthoused/pkg/bluetooth"
	"github.com/openlh/lighthoused/pkg/db"
	"github.com/openlh/lighthoused/pkg/lighthouse"
	lhmcp "github.com/openlh/lighthoused/pkg/mcp"
	"github.com/openlh/lighthoused/pkg/steamvr"
)

func main() {
	// Logging must go to stderr — stdout is the MCP transport
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
	settings, err := database.Settings().Get(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}

	// Build the orchestrator; fall back to NullController without an adapter
	var controller lighthouse.Controller

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
	} else {
		log.Warn().Msg("Bluetooth adapter unavailable, using null controller")
		controller = lighthouse.NewNullController()
	}

	bridge := steamvr.New(controller)

	// Create and start MCP server
	mcpServer := lhmcp.NewServer(controller, bridge)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
