//go:build windows
// +build windows

package audiosink

import (
	"context"
	"fmt"

	"github.com/genricoloni/routewatch/internal/config"
	"go.uber.org/zap"
)

// WindowsInspector is the unsupported-platform inspector for Windows
type WindowsInspector struct {
	classifier
	logger *zap.Logger
}

// NewInspector creates a sink inspector (Windows implementation)
func NewInspector(logger *zap.Logger, cfg *config.AppConfig) *WindowsInspector {
	logger.Warn("Audio sink inspection is not supported on Windows")
	return &WindowsInspector{
		classifier: newClassifier(cfg.RemoteSinkMarkers),
		logger:     logger,
	}
}

// DefaultSink returns an error: Windows exposes no network sinks to inspect
func (i *WindowsInspector) DefaultSink(ctx context.Context) (string, error) {
	return "", fmt.Errorf("default sink query not supported on Windows")
}
