package routestate

import (
	"context"
	"errors"

	"github.com/genricoloni/routewatch/internal/dispatch"
	"github.com/genricoloni/routewatch/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Monitor derives the route state from a RouteProbe on every notification and
// publishes it to a delegate and optional callbacks.
//
// All fields below the probe are confined to the dispatch loop: they are only
// read or written from tasks running on it.
type Monitor struct {
	logger *zap.Logger
	loop   *dispatch.Loop
	probe  domain.RouteProbe

	state                domain.RouteState
	delegate             domain.Delegate
	delegateID           uuid.UUID
	onStateChange        func(domain.RouteState)
	onAvailabilityChange func(bool)
}

// Registration identifies a delegate registration.
// It does not keep the monitor from dropping the delegate.
type Registration struct {
	id      uuid.UUID
	monitor *Monitor
}

// NewMonitor creates a route monitor that runs on loop and reads probe
func NewMonitor(logger *zap.Logger, loop *dispatch.Loop, probe domain.RouteProbe) *Monitor {
	return &Monitor{
		logger: logger,
		loop:   loop,
		probe:  probe,
		state:  domain.RouteOff,
	}
}

// onLoop runs fn on the dispatch loop and waits for it.
// Observers calling back into the monitor already run on the loop, so fn runs
// directly for them. Once the loop has stopped nothing else can touch the
// monitor, so fn runs inline.
func (m *Monitor) onLoop(fn func()) {
	err := m.loop.Do(context.Background(), fn)
	if errors.Is(err, dispatch.ErrStopped) {
		fn()
	}
}

// CurrentState returns the state computed for the most recent notification
func (m *Monitor) CurrentState() domain.RouteState {
	var s domain.RouteState
	m.onLoop(func() { s = m.state })
	return s
}

// IsExternalRouteActive reports whether any non-local route is active
func (m *Monitor) IsExternalRouteActive() bool {
	var active bool
	m.onLoop(func() { active = m.probe.ExternalRouteActive() })
	return active
}

// IsMirroringActive reports whether an external route is active and the
// second display surface mirrors the primary
func (m *Monitor) IsMirroringActive() bool {
	var mirroring bool
	m.onLoop(func() { mirroring = m.mirroringActive() })
	return mirroring
}

// IsExternalPlaybackOnly reports whether media renders on the external route without mirroring
func (m *Monitor) IsExternalPlaybackOnly() bool {
	var only bool
	m.onLoop(func() { only = m.externalPlaybackOnly() })
	return only
}

// IsWiredPlaybackActive reports whether a locally attached display mirrors the
// primary while playback is not routed exclusively to an external device
func (m *Monitor) IsWiredPlaybackActive() bool {
	var wired bool
	m.onLoop(func() {
		wired = !m.externalPlaybackOnly() && secondSurfaceMirrorsPrimary(m.probe.Surfaces())
	})
	return wired
}

func (m *Monitor) mirroringActive() bool {
	if !m.probe.ExternalRouteActive() {
		return false
	}
	return secondSurfaceMirrorsPrimary(m.probe.Surfaces())
}

func (m *Monitor) externalPlaybackOnly() bool {
	return m.probe.ExternalRouteActive() && !m.mirroringActive()
}

// SetDelegate replaces the delegate. A nil delegate clears it.
// Unregistering the returned Registration removes d unless it was replaced since.
func (m *Monitor) SetDelegate(d domain.Delegate) *Registration {
	reg := &Registration{id: uuid.New(), monitor: m}
	m.onLoop(func() {
		m.delegate = d
		m.delegateID = reg.id
		if d == nil {
			m.delegateID = uuid.Nil
		}
	})
	return reg
}

// Unregister removes the delegate registered under r
func (r *Registration) Unregister() {
	if r == nil || r.monitor == nil {
		return
	}
	m := r.monitor
	m.onLoop(func() {
		if m.delegateID != r.id {
			return
		}
		m.delegate = nil
		m.delegateID = uuid.Nil
	})
}

// SetOnStateChange replaces the state callback. A nil callback clears it.
func (m *Monitor) SetOnStateChange(cb func(domain.RouteState)) {
	m.onLoop(func() { m.onStateChange = cb })
}

// SetOnAvailabilityChange replaces the availability callback. A nil callback clears it.
func (m *Monitor) SetOnAvailabilityChange(cb func(bool)) {
	m.onLoop(func() { m.onAvailabilityChange = cb })
}

// HandleNotification re-evaluates the route after a change notification.
// It schedules a state update and an availability update; both publish even
// when nothing changed.
func (m *Monitor) HandleNotification(n domain.Notification) {
	if err := m.loop.Post(m.updateState); err != nil {
		m.logger.Debug("Dropping state update", zap.String("source", n.Source), zap.Error(err))
		return
	}
	if err := m.loop.Post(m.updateAvailability); err != nil {
		m.logger.Debug("Dropping availability update", zap.String("source", n.Source), zap.Error(err))
	}
}

// updateState runs on the loop
func (m *Monitor) updateState() {
	external := m.probe.ExternalRouteActive()
	mirroring := external && secondSurfaceMirrorsPrimary(m.probe.Surfaces())
	m.state = Derive(external, mirroring)

	m.logger.Debug("Route state evaluated",
		zap.Bool("external", external),
		zap.Bool("mirroring", mirroring),
		zap.Stringer("state", m.state))

	if m.delegate != nil {
		m.delegate.OnStateChanged(m.state)
	}
	if m.onStateChange != nil {
		m.onStateChange(m.state)
	}
}

// updateAvailability runs on the loop
func (m *Monitor) updateAvailability() {
	available := m.probe.MultipleRoutesDetected()

	if m.delegate != nil {
		m.delegate.OnAvailabilityChanged(available)
	}
	if m.onAvailabilityChange != nil {
		m.onAvailabilityChange(available)
	}
}

// Close drops every observer. Notifications handled afterwards update the
// state but publish nothing.
func (m *Monitor) Close() {
	m.onLoop(func() {
		m.delegate = nil
		m.delegateID = uuid.Nil
		m.onStateChange = nil
		m.onAvailabilityChange = nil
	})
	m.logger.Debug("Route monitor observers cleared")
}
