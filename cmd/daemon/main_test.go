package main

import (
	"context"
	"testing"

	"github.com/genricoloni/routewatch/internal/config"
	"github.com/genricoloni/routewatch/internal/discovery"
	"github.com/genricoloni/routewatch/internal/domain"
	"github.com/genricoloni/routewatch/internal/engine"
	"github.com/genricoloni/routewatch/internal/routestate"
	"go.uber.org/fx"
)

// TestAppGraphValidity verifies that the dependency graph is resolvable.
// This test will fail if you forget an fx.Provide for a required interface.
func TestAppGraphValidity(t *testing.T) {
	// fx.ValidateApp checks that there are no missing or cyclic dependencies
	err := fx.ValidateApp(AppOptions)

	if err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

// TestNewLogger specifically verifies the logger configuration
func TestNewLogger(t *testing.T) {
	logger, err := newLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}
	logger.Info("Test logger initialization")
}

// TestBrowserServesBothRoles checks the browser is shared by the probe and the engine
func TestBrowserServesBothRoles(t *testing.T) {
	var (
		browser  *discovery.Browser
		receiver domain.ReceiverSource
	)

	app := fx.New(
		AppOptions,
		fx.NopLogger,
		fx.Populate(&browser, &receiver),
	)
	if err := app.Err(); err != nil {
		t.Fatalf("App construction failed: %v", err)
	}

	if receiver != domain.ReceiverSource(browser) {
		t.Error("Expected the receiver source to be the discovery browser")
	}
}

// TestEndToEndStartup runs a real startup/stop with every external source disabled.
// We use fx.NopLogger to avoid cluttering test output
func TestEndToEndStartup(t *testing.T) {
	var mon *routestate.Monitor

	app := fx.New(
		AppOptions,
		fx.NopLogger, // Silence Fx logs during tests
		fx.Decorate(func(cfg *config.AppConfig) *config.AppConfig {
			offline := *cfg
			offline.BusEnabled = false
			offline.DiscoveryEnabled = false
			offline.PollInterval = 0
			return &offline
		}),
		fx.Populate(&mon),
		fx.Invoke(func(*engine.Engine) {}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := app.Start(ctx); err != nil {
		t.Fatalf("App failed to start: %v", err)
	}

	// Queries are answered on the dispatch loop while the app runs
	if got := mon.CurrentState(); got < domain.RouteOff || got > domain.ExternalPlaybackOnly {
		t.Errorf("Unexpected route state %d", got)
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("App failed to stop: %v", err)
	}
}
