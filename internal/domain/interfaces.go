package domain

import "context"

// RouteProbe supplies the raw routing signals the route monitor derives its state from
//
//go:generate mockgen -destination=mocks/route_probe_mock.go -package=mocks github.com/genricoloni/routewatch/internal/domain RouteProbe
type RouteProbe interface {
	// ExternalRouteActive reports whether media is currently rendered on a non-local device
	ExternalRouteActive() bool

	// MultipleRoutesDetected reports whether more than one rendering route is available
	MultipleRoutesDetected() bool

	// Surfaces returns the active display surfaces, primary first
	Surfaces() []Surface
}

// Delegate receives route updates from the route monitor.
// Both methods are invoked on the monitor's dispatch loop and may query the monitor.
type Delegate interface {
	// OnStateChanged is called with the freshly derived state after every notification
	OnStateChanged(state RouteState)

	// OnAvailabilityChanged is called with whether multiple routes are currently detected
	OnAvailabilityChanged(available bool)
}

// NotificationFeed produces route-changed notifications
type NotificationFeed interface {
	// Start begins observing.
	// It should block until context is cancelled or an error occurs
	Start(ctx context.Context) error

	// Stop gracefully stops the feed and closes the events channel
	Stop(ctx context.Context) error

	// Events returns a read-only channel of notifications
	Events() <-chan Notification
}

// SinkInspector reports on the default audio sink
type SinkInspector interface {
	// DefaultSink returns the name of the current default sink
	DefaultSink(ctx context.Context) (string, error)

	// IsRemote reports whether the named sink forwards audio to a network device
	IsRemote(sink string) bool
}

// ReceiverSource lists network receivers currently visible
type ReceiverSource interface {
	Receivers() []Receiver
}

// DisplaySource lists active display surfaces
type DisplaySource interface {
	Surfaces() []Surface
}
