package common

import "math"

// TileSize is the edge length of one map tile in display pixels.
const TileSize = 48

const (
	// PixelsPerUnit is the number of display pixels in one simulation unit.
	PixelsPerUnit = 640.0
	// UnitsPerPixel is the inverse scale, kept as its own literal so conversions
	// multiply rather than divide.
	UnitsPerPixel = 0.0015625

	// BoxPadding shrinks box half extents so neighbouring boxes don't catch edges.
	BoxPadding = 0.0095

	// PolygonPadX and PolygonPadY pull polygon vertices toward the origin (pixels)
	// to make room for the simulator's collision skin.
	PolygonPadX = 8.0
	PolygonPadY = 5.0
)

// ToSim converts a display-space point to simulation units.
func ToSim(px, py float64) (float64, float64) {
	return px * UnitsPerPixel, py * UnitsPerPixel
}

// ToDisplay converts a simulation-space point to display pixels.
func ToDisplay(sx, sy float64) (float64, float64) {
	return sx * PixelsPerUnit, sy * PixelsPerUnit
}

// ToSimLength scales a single display length to simulation units.
func ToSimLength(v float64) float64 {
	return v * UnitsPerPixel
}

// ToDisplayLength scales a single simulation length to display pixels.
func ToDisplayLength(v float64) float64 {
	return v * PixelsPerUnit
}

// PadBoxHalfExtent returns the half extent a box is actually built with.
func PadBoxHalfExtent(half float64) float64 {
	return half - BoxPadding
}

// BoxHalfExtent pads the half of a full simulation size.
func BoxHalfExtent(size float64) float64 {
	return PadBoxHalfExtent(size / 2)
}

// PadPolygonVertex moves a pixel vertex inward per axis, then converts it.
// Zero components are left on their axis.
func PadPolygonVertex(x, y float64) (float64, float64) {
	if x > 0 {
		x -= PolygonPadX
	}
	if x < 0 {
		x += PolygonPadX
	}
	if y > 0 {
		y -= PolygonPadY
	}
	if y < 0 {
		y += PolygonPadY
	}
	return ToSim(x, y)
}

// TileToPixel converts a tile coordinate to display pixels.
func TileToPixel(t float64) float64 {
	return t * TileSize
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * (180 / math.Pi)
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
