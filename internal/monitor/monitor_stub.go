//go:build !linux
// +build !linux

package monitor

import (
	"context"
	"fmt"

	"github.com/genricoloni/routewatch/internal/config"
	"github.com/genricoloni/routewatch/internal/domain"
	"go.uber.org/zap"
)

// SignalFeed stub for non-Linux platforms
type SignalFeed struct {
	logger *zap.Logger
	events chan domain.Notification
}

// NewSignalFeed creates a stub feed that returns an error on non-Linux platforms
func NewSignalFeed(logger *zap.Logger, cfg *config.AppConfig) *SignalFeed {
	events := make(chan domain.Notification)
	close(events)
	return &SignalFeed{logger: logger, events: events}
}

// Start returns an error indicating D-Bus notifications are not supported on this platform
func (m *SignalFeed) Start(ctx context.Context) error {
	return fmt.Errorf("D-Bus route notifications are only supported on Linux systems")
}

// Events returns a closed channel since the feed is not available
func (m *SignalFeed) Events() <-chan domain.Notification {
	return m.events
}

// Stop is a no-op on non-Linux platforms
func (m *SignalFeed) Stop(ctx context.Context) error {
	return nil
}
