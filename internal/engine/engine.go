package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/genricoloni/routewatch/internal/config"
	"github.com/genricoloni/routewatch/internal/dispatch"
	"github.com/genricoloni/routewatch/internal/domain"
	"github.com/genricoloni/routewatch/internal/routestate"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Engine orchestrates route monitoring.
// It runs the dispatch loop, starts the notification sources and forwards
// every notification to the route monitor.
type Engine struct {
	logger       *zap.Logger
	loop         *dispatch.Loop
	monitor      *routestate.Monitor
	feed         domain.NotificationFeed // nil when the bus is disabled
	browser      domain.NotificationFeed // nil when discovery is disabled
	pollInterval time.Duration

	cancel       context.CancelFunc
	wg           sync.WaitGroup
	registration *routestate.Registration
	lastState    domain.RouteState
	published    bool
}

// NewEngine creates a new orchestration engine.
// feed and browser are optional; pass nil to disable them.
func NewEngine(
	logger *zap.Logger,
	cfg *config.AppConfig,
	loop *dispatch.Loop,
	mon *routestate.Monitor,
	feed domain.NotificationFeed,
	browser domain.NotificationFeed,
) *Engine {
	return &Engine{
		logger:       logger,
		loop:         loop,
		monitor:      mon,
		feed:         feed,
		browser:      browser,
		pollInterval: cfg.PollInterval,
	}
}

// Start launches the loop, the sources and the forwarding goroutines.
// It returns immediately (non-blocking).
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...")

	// The lifecycle context only covers startup; the engine runs until Stop
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.loop.Run(runCtx); err != nil {
			e.logger.Error("Dispatch loop failed", zap.Error(err))
		}
	}()

	e.registration = e.monitor.SetDelegate(e)

	for _, source := range e.sources() {
		e.runSource(runCtx, source)
	}

	if e.pollInterval > 0 {
		e.wg.Add(1)
		go e.pollLoop(runCtx)
	}

	// Publish the initial state instead of waiting for the first change
	e.monitor.HandleNotification(domain.Notification{Source: "engine", Name: "Startup", At: time.Now()})

	return nil
}

func (e *Engine) sources() []domain.NotificationFeed {
	var sources []domain.NotificationFeed
	if e.feed != nil {
		sources = append(sources, e.feed)
	}
	if e.browser != nil {
		sources = append(sources, e.browser)
	}
	return sources
}

// runSource starts a notification source and forwards its events.
// A failing source is logged and the engine keeps running on the others.
func (e *Engine) runSource(ctx context.Context, source domain.NotificationFeed) {
	e.wg.Add(2)

	go func() {
		defer e.wg.Done()
		if err := source.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Warn("Notification source stopped with error", zap.Error(err))
		}
	}()

	go func() {
		defer e.wg.Done()
		events := source.Events()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-events:
				if !ok {
					return
				}
				e.monitor.HandleNotification(n)
			}
		}
	}()
}

// pollLoop emits synthetic notifications for changes no source announces
// (e.g. the default sink moving to a network sink)
func (e *Engine) pollLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			e.monitor.HandleNotification(domain.Notification{Source: "poll", Name: "Tick", At: t})
		}
	}
}

// OnStateChanged logs the route state. It runs on the dispatch loop.
func (e *Engine) OnStateChanged(state domain.RouteState) {
	if e.published && state == e.lastState {
		e.logger.Debug("Route state unchanged", zap.Stringer("state", state))
		return
	}
	e.logger.Info("Route state changed",
		zap.Stringer("from", e.lastState),
		zap.Stringer("to", state))
	e.lastState = state
	e.published = true
}

// OnAvailabilityChanged logs route availability. It runs on the dispatch loop.
func (e *Engine) OnAvailabilityChanged(available bool) {
	e.logger.Debug("Route availability evaluated", zap.Bool("available", available))
}

// Stop tears down the sources, the monitor observers and the loop
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	var errs error
	for _, source := range e.sources() {
		errs = multierr.Append(errs, source.Stop(ctx))
	}

	if e.registration != nil {
		e.registration.Unregister()
	}
	e.monitor.Close()

	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		errs = multierr.Append(errs, ctx.Err())
	}

	if errs != nil {
		e.logger.Error("Engine stopped with errors", zap.Error(errs))
		return errs
	}

	e.logger.Info("Engine stopped")
	return nil
}
