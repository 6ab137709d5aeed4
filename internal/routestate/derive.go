package routestate

import "github.com/genricoloni/routewatch/internal/domain"

// Derive maps the raw routing signals to a RouteState.
// The external route check comes first: a mirroring flag left over from a
// previous session must not turn RouteOff into MirroredPlayback.
func Derive(externalRouteActive, mirroring bool) domain.RouteState {
	if !externalRouteActive {
		return domain.RouteOff
	}
	if mirroring {
		return domain.MirroredPlayback
	}
	return domain.ExternalPlaybackOnly
}

// secondSurfaceMirrorsPrimary reports whether surfaces[1] duplicates surfaces[0]
func secondSurfaceMirrorsPrimary(surfaces []domain.Surface) bool {
	if len(surfaces) < 2 {
		return false
	}
	return surfaces[1].Mirrors(surfaces[0])
}
