package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/routewatch/internal/audiosink"
	"github.com/genricoloni/routewatch/internal/config"
	"github.com/genricoloni/routewatch/internal/discovery"
	"github.com/genricoloni/routewatch/internal/dispatch"
	"github.com/genricoloni/routewatch/internal/display"
	"github.com/genricoloni/routewatch/internal/domain"
	"github.com/genricoloni/routewatch/internal/engine"
	"github.com/genricoloni/routewatch/internal/monitor"
	"github.com/genricoloni/routewatch/internal/probe"
	"github.com/genricoloni/routewatch/internal/routestate"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const dispatchBacklog = 64

// AppOptions is the complete dependency graph of the daemon
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	// Provide dependencies
	fx.Provide(
		newLogger,
		config.NewAppConfig,
		newLoop,
		fx.Annotate(display.NewProbe, fx.As(new(domain.DisplaySource))),
		fx.Annotate(audiosink.NewInspector, fx.As(new(domain.SinkInspector))),
		fx.Annotate(discovery.NewBrowser, fx.As(fx.Self()), fx.As(new(domain.ReceiverSource))),
		fx.Annotate(probe.NewComposite, fx.As(new(domain.RouteProbe))),
		routestate.NewMonitor,
		monitor.NewSignalFeed,
		newEngine,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newLoop creates the dispatch loop every route update runs on
func newLoop(logger *zap.Logger) *dispatch.Loop {
	return dispatch.NewLoop(logger, dispatchBacklog)
}

// newEngine wires the enabled notification sources into the engine
func newEngine(
	logger *zap.Logger,
	cfg *config.AppConfig,
	loop *dispatch.Loop,
	mon *routestate.Monitor,
	feed *monitor.SignalFeed,
	browser *discovery.Browser,
) *engine.Engine {
	var busFeed, discoveryFeed domain.NotificationFeed
	if cfg.BusEnabled {
		busFeed = feed
	}
	if cfg.DiscoveryEnabled {
		discoveryFeed = browser
	}
	return engine.NewEngine(logger, cfg, loop, mon, busFeed, discoveryFeed)
}

// registerHooks binds the engine to the application lifecycle
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, eng *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Routewatch Daemon Started")
			return eng.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return eng.Stop(ctx)
		},
	})
}
