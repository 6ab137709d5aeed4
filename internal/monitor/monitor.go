//go:build linux
// +build linux

package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/genricoloni/routewatch/internal/config"
	"github.com/genricoloni/routewatch/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// watchedSignal is one D-Bus signal treated as a route-changed notification
type watchedSignal struct {
	iface  string
	member string
}

func (w watchedSignal) name() string {
	return w.iface + "." + w.member
}

func (w watchedSignal) matchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface(w.iface),
		dbus.WithMatchMember(w.member),
	}
}

// SignalFeed turns D-Bus signals into route-changed notifications
type SignalFeed struct {
	logger         *zap.Logger
	events         chan domain.Notification
	mu             sync.RWMutex
	running        bool
	cancel         context.CancelFunc
	conn           DBusClient // Interface for testability
	connect        func() (DBusClient, error)
	signals        chan *dbus.Signal
	watched        []watchedSignal
	wg             sync.WaitGroup // Tracks the signal goroutine
	connectRetries uint
	connectDelay   time.Duration
}

// NewSignalFeed creates a D-Bus notification feed for the configured signals
func NewSignalFeed(logger *zap.Logger, cfg *config.AppConfig) *SignalFeed {
	watched := make([]watchedSignal, 0, len(cfg.Signals))
	for _, s := range cfg.Signals {
		iface, member, ok := config.SplitSignal(s)
		if !ok {
			logger.Warn("Ignoring malformed signal name", zap.String("signal", s))
			continue
		}
		watched = append(watched, watchedSignal{iface: iface, member: member})
	}

	return &SignalFeed{
		logger:         logger,
		events:         make(chan domain.Notification, 10),
		connect:        NewStdDBusClient,
		watched:        watched,
		connectRetries: cfg.BusConnectAttempts,
		connectDelay:   cfg.BusConnectDelay,
	}
}

// Start subscribes to the configured signals and blocks until the context is
// cancelled or Stop is called
func (m *SignalFeed) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true

	feedCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	m.logger.Info("D-Bus notification feed started")

	// Connect to Session Bus, retrying while the session is still coming up
	var conn DBusClient
	err := retry.New(
		retry.Attempts(m.connectRetries),
		retry.Delay(m.connectDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(feedCtx),
	).Do(func() error {
		c, err := m.connect()
		if err != nil {
			m.logger.Debug("Session bus connection attempt failed", zap.Error(err))
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		m.logger.Error("Failed to connect to session bus", zap.Error(err))
		// Reset running state on failure
		m.mu.Lock()
		defer m.mu.Unlock()
		m.running = false
		m.cancel = nil
		cancel()
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	// Protect connection assignment with mutex to avoid race with Stop().
	// The signal goroutine is reserved under the same lock so Stop waits for it.
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		m.logger.Info("Feed stopped during D-Bus connection")
		if err := conn.Close(); err != nil {
			m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
		return context.Canceled
	}
	m.conn = conn
	m.wg.Add(1)
	m.mu.Unlock()

	for _, w := range m.watched {
		if err := conn.AddMatchSignal(w.matchOptions()...); err != nil {
			m.wg.Done()
			m.logger.Error("Failed to add match signal", zap.String("signal", w.name()), zap.Error(err))
			return fmt.Errorf("failed to add match signal %s: %w", w.name(), err)
		}
		m.logger.Info("D-Bus match rule added", zap.String("signal", w.name()))
	}

	signals := make(chan *dbus.Signal, 10)
	conn.Signal(signals)

	m.mu.Lock()
	m.signals = signals
	m.mu.Unlock()

	go m.monitorSignals(feedCtx, signals)

	// Block until context is cancelled
	<-feedCtx.Done()

	m.logger.Info("D-Bus notification feed stopped")
	return feedCtx.Err()
}

// Stop unsubscribes, closes the connection and closes the events channel
func (m *SignalFeed) Stop(ctx context.Context) error {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()
		return nil
	}

	if m.cancel != nil {
		m.cancel()
	}

	m.running = false
	m.mu.Unlock()

	// Wait for the signal goroutine before closing the channel
	// This prevents "send on closed channel" panic
	m.logger.Debug("Waiting for signal goroutine to finish")
	m.wg.Wait()

	close(m.events)

	var errs error
	m.mu.Lock()
	if m.conn != nil {
		for _, w := range m.watched {
			errs = multierr.Append(errs, m.conn.RemoveMatchSignal(w.matchOptions()...))
		}
		if m.signals != nil {
			m.conn.RemoveSignal(m.signals)
		}
		errs = multierr.Append(errs, m.conn.Close())
		m.conn = nil
	}
	m.mu.Unlock()

	if errs != nil {
		m.logger.Warn("D-Bus feed teardown incomplete", zap.Error(errs))
		return fmt.Errorf("failed to tear down D-Bus feed: %w", errs)
	}

	m.logger.Info("D-Bus notification feed shutdown complete")
	return nil
}

// Events returns a read-only channel that emits a Notification per matching signal
func (m *SignalFeed) Events() <-chan domain.Notification {
	return m.events
}

// monitorSignals listens for D-Bus signals and forwards matching ones
func (m *SignalFeed) monitorSignals(ctx context.Context, signals <-chan *dbus.Signal) {
	defer m.wg.Done() // Signal completion when goroutine exits

	m.logger.Info("Signal monitoring goroutine started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Signal monitoring goroutine stopped")
			return
		case sig, ok := <-signals:
			if !ok {
				m.logger.Warn("D-Bus signal channel closed")
				return
			}
			if sig == nil {
				continue
			}
			m.handleSignal(ctx, sig)
		}
	}
}

// handleSignal emits a notification if sig is one of the watched signals.
// The signal body is ignored: consumers re-query the route state.
func (m *SignalFeed) handleSignal(ctx context.Context, sig *dbus.Signal) {
	if !m.isWatched(sig.Name) {
		return
	}

	n := domain.Notification{Source: "dbus", Name: sig.Name, At: time.Now()}

	m.logger.Debug("Route change signal received",
		zap.String("signal", sig.Name),
		zap.String("sender", sig.Sender),
		zap.String("path", string(sig.Path)))

	// Every notification is delivered; the consumer must not miss a change
	select {
	case m.events <- n:
	case <-ctx.Done():
	}
}

func (m *SignalFeed) isWatched(name string) bool {
	for _, w := range m.watched {
		if w.name() == name {
			return true
		}
	}
	return false
}
