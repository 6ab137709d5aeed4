//go:build !linux && !windows
// +build !linux,!windows

package audiosink

import (
	"context"
	"fmt"

	"github.com/genricoloni/routewatch/internal/config"
	"go.uber.org/zap"
)

// StubInspector is a placeholder for unsupported platforms (macOS, BSD, etc.)
type StubInspector struct {
	classifier
	logger *zap.Logger
}

// NewInspector creates a stub inspector for unsupported platforms
func NewInspector(logger *zap.Logger, cfg *config.AppConfig) *StubInspector {
	logger.Warn("Audio sink inspection is not yet implemented for this platform")
	return &StubInspector{
		classifier: newClassifier(cfg.RemoteSinkMarkers),
		logger:     logger,
	}
}

// DefaultSink returns an error indicating the platform is not supported
func (i *StubInspector) DefaultSink(ctx context.Context) (string, error) {
	return "", fmt.Errorf("default sink query not implemented for this platform")
}
