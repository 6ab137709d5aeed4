package probe

import (
	"context"
	"time"

	"github.com/genricoloni/routewatch/internal/config"
	"github.com/genricoloni/routewatch/internal/domain"
	"go.uber.org/zap"
)

var _ domain.RouteProbe = (*Composite)(nil)

// Composite answers route queries from the default audio sink, the visible
// network receivers and the active displays.
type Composite struct {
	logger    *zap.Logger
	sinks     domain.SinkInspector
	receivers domain.ReceiverSource
	displays  domain.DisplaySource
	timeout   time.Duration
}

// NewComposite creates a route probe from its sources.
// receivers may be nil when discovery is disabled.
func NewComposite(
	logger *zap.Logger,
	cfg *config.AppConfig,
	sinks domain.SinkInspector,
	receivers domain.ReceiverSource,
	displays domain.DisplaySource,
) *Composite {
	return &Composite{
		logger:    logger,
		sinks:     sinks,
		receivers: receivers,
		displays:  displays,
		timeout:   cfg.ProbeTimeout,
	}
}

// ExternalRouteActive reports whether the default sink forwards audio over the network
func (c *Composite) ExternalRouteActive() bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	sink, err := c.sinks.DefaultSink(ctx)
	if err != nil {
		c.logger.Debug("Default sink unavailable", zap.Error(err))
		return false
	}
	return c.sinks.IsRemote(sink)
}

// MultipleRoutesDetected reports whether a route besides the local one exists:
// either playback is already routed away or a receiver is visible.
func (c *Composite) MultipleRoutesDetected() bool {
	if c.receivers != nil && len(c.receivers.Receivers()) > 0 {
		return true
	}
	return c.ExternalRouteActive()
}

// Surfaces returns the active display surfaces
func (c *Composite) Surfaces() []domain.Surface {
	return c.displays.Surfaces()
}
