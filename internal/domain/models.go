package domain

import (
	"image"
	"time"
)

// RouteState is the simplified view of where media is currently rendered
type RouteState int

const (
	// RouteOff indicates no external route is active
	RouteOff RouteState = iota
	// MirroredPlayback indicates an external route is active and the primary display is mirrored
	MirroredPlayback
	// ExternalPlaybackOnly indicates media renders only on the external route
	ExternalPlaybackOnly
)

func (s RouteState) String() string {
	switch s {
	case RouteOff:
		return "off"
	case MirroredPlayback:
		return "mirrored"
	case ExternalPlaybackOnly:
		return "external-only"
	default:
		return "unknown"
	}
}

// Surface is one active display surface. Index 0 is the primary display.
type Surface struct {
	Index  int
	Bounds image.Rectangle
}

// Mirrors reports whether s duplicates the primary surface.
// Mirrored outputs occupy the same rectangle of the desktop as the one they clone.
func (s Surface) Mirrors(primary Surface) bool {
	if s.Index == primary.Index || s.Bounds.Empty() {
		return false
	}
	return s.Bounds == primary.Bounds
}

// Receiver is a network playback target found on the local network
type Receiver struct {
	// Name is the instance name advertised by the receiver
	Name string
	// Service is the service type it was found under (e.g. "_airplay._tcp")
	Service string
	Host    string
	Port    int
	// LastSeen is the time of the most recent answer from the receiver
	LastSeen time.Time
}

// Notification signals that routing may have changed.
// It carries identity only; handlers re-query the current route state.
type Notification struct {
	// Source names the feed that produced it ("dbus", "mdns", "poll")
	Source string
	// Name is the signal name within the source
	Name string
	At   time.Time
}
