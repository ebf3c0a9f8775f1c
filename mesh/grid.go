// Package mesh compacts a tile passability grid into the rectangles used as
// static collision geometry.
package mesh

// Direction is a cardinal movement direction out of a cell.
type Direction int

const (
	Down Direction = iota + 1
	Left
	Right
	Up
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// Grid answers passability queries for cells in [0,Width) x [0,Height).
type Grid interface {
	Width() int
	Height() int
	Passable(x, y int, dir Direction) bool
}

// Cell is a tile coordinate.
type Cell struct {
	X, Y int
}

// Rect is an axis-aligned block of tiles.
type Rect struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// Contains reports whether the tile (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Area returns the number of tiles covered by r.
func (r Rect) Area() int {
	return r.W * r.H
}

// Blocked reports whether a cell is impassable in every direction.
func Blocked(g Grid, x, y int) bool {
	return !(g.Passable(x, y, Down) || g.Passable(x, y, Left) || g.Passable(x, y, Right) || g.Passable(x, y, Up))
}
