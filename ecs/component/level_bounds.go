package component

// LevelBounds stores the size of the current level in display pixels.
type LevelBounds struct {
	Width  float64
	Height float64
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
