package display

import (
	"image"
	"testing"

	"go.uber.org/zap"
)

func TestProbe_Surfaces(t *testing.T) {
	tests := []struct {
		name     string
		bounds   []image.Rectangle
		mirrored bool
	}{
		{
			name: "No Displays",
		},
		{
			name:   "Single Display",
			bounds: []image.Rectangle{image.Rect(0, 0, 2560, 1440)},
		},
		{
			name:     "Mirrored Pair",
			bounds:   []image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(0, 0, 1920, 1080)},
			mirrored: true,
		},
		{
			name:   "Extended Pair",
			bounds: []image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3840, 1080)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProbe(zap.NewNop())
			p.numDisplays = func() int { return len(tt.bounds) }
			p.displayBounds = func(i int) image.Rectangle { return tt.bounds[i] }

			surfaces := p.Surfaces()

			if len(surfaces) != len(tt.bounds) {
				t.Fatalf("Expected %d surfaces, got %d", len(tt.bounds), len(surfaces))
			}
			for i, s := range surfaces {
				if s.Index != i || s.Bounds != tt.bounds[i] {
					t.Errorf("Surface %d mismatch: %+v", i, s)
				}
			}
			if len(surfaces) > 1 {
				if got := surfaces[1].Mirrors(surfaces[0]); got != tt.mirrored {
					t.Errorf("Mirrors: expected %v, got %v", tt.mirrored, got)
				}
			}
		})
	}
}
