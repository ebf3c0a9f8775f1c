package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSimRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		px, py float64
		sx, sy float64
	}{
		{"origin", 0, 0, 0, 0},
		{"one tile", 48, 48, 0.075, 0.075},
		{"one unit", 640, -640, 1, -1},
		{"fraction", 64, 128, 0.1, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := ToSim(tt.px, tt.py)
			assert.InDelta(t, tt.sx, sx, 1e-12)
			assert.InDelta(t, tt.sy, sy, 1e-12)

			px, py := ToDisplay(sx, sy)
			assert.InDelta(t, tt.px, px, 1e-9)
			assert.InDelta(t, tt.py, py, 1e-9)
		})
	}
}

func TestScalesAreInverse(t *testing.T) {
	assert.InDelta(t, 1.0, PixelsPerUnit*UnitsPerPixel, 1e-15)
	assert.InDelta(t, 0.5, ToSimLength(320), 1e-12)
	assert.InDelta(t, 320.0, ToDisplayLength(0.5), 1e-9)
}

func TestBoxPadding(t *testing.T) {
	assert.InDelta(t, 0.0280, BoxHalfExtent(0.075), 1e-12)
	assert.InDelta(t, 0.1405, PadBoxHalfExtent(0.15), 1e-12)
}

func TestPadPolygonVertex(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		px, py float64
	}{
		{"positive", 24, 24, 16, 19},
		{"negative", -24, -24, -16, -19},
		{"zero stays", 0, 24, 0, 19},
		{"mixed", 10, -10, 2, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := PadPolygonVertex(tt.x, tt.y)
			wantX, wantY := ToSim(tt.px, tt.py)
			assert.InDelta(t, wantX, sx, 1e-12)
			assert.InDelta(t, wantY, sy, 1e-12)
		})
	}
}

func TestAngles(t *testing.T) {
	assert.InDelta(t, 180.0, RadToDeg(math.Pi), 1e-12)
	assert.InDelta(t, math.Pi/2, DegToRad(90), 1e-12)
	assert.Equal(t, 96.0, TileToPixel(2))
}
