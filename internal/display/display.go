package display

import (
	"image"

	"github.com/genricoloni/routewatch/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// Probe lists the active display surfaces through the platform screen APIs
type Probe struct {
	logger        *zap.Logger
	numDisplays   func() int
	displayBounds func(int) image.Rectangle
}

// NewProbe creates a display probe backed by the screenshot library
func NewProbe(logger *zap.Logger) *Probe {
	return &Probe{
		logger:        logger,
		numDisplays:   screenshot.NumActiveDisplays,
		displayBounds: screenshot.GetDisplayBounds,
	}
}

// Surfaces returns the active displays in platform order; index 0 is the primary
func (p *Probe) Surfaces() []domain.Surface {
	n := p.numDisplays()
	if n <= 0 {
		p.logger.Debug("No active displays detected")
		return nil
	}

	surfaces := make([]domain.Surface, 0, n)
	for i := 0; i < n; i++ {
		surfaces = append(surfaces, domain.Surface{
			Index:  i,
			Bounds: p.displayBounds(i),
		})
	}

	p.logger.Debug("Display surfaces detected", zap.Int("count", len(surfaces)))
	return surfaces
}
