package mesh

import (
	"github.com/milk9111/tilephysics/logger"
	"github.com/sirupsen/logrus"
)

// BorderThickness is how many tiles the outer wall ring extends past the map.
const BorderThickness = 2

// Mesh is the compacted collision geometry of one grid.
type Mesh struct {
	// Border is the closed ring around the map: top, bottom, left, right.
	Border [4]Rect
	// Tiles covers every fully blocked cell exactly once.
	Tiles []Rect

	// Edge strips for cells blocked on one side only.
	Tops    []Rect
	Bottoms []Rect
	Lefts   []Rect
	Rights  []Rect
}

// Rects returns the border followed by the tile cover, the order static
// bodies are created in.
func (m Mesh) Rects() []Rect {
	out := make([]Rect, 0, len(m.Border)+len(m.Tiles))
	out = append(out, m.Border[:]...)
	return append(out, m.Tiles...)
}

// Build scans g and returns its collision mesh.
func Build(g Grid) Mesh {
	w, h := g.Width(), g.Height()
	if w < 0 || h < 0 {
		logger.For("mesh").WithFields(logrus.Fields{"width": w, "height": h}).Warn("mesh: negative grid size clamped to zero")
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}

	var blocked, tops, bottoms, lefts, rights []Cell
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if Blocked(g, x, y) {
				blocked = append(blocked, Cell{X: x, Y: y})
				continue
			}
			if !g.Passable(x, y, Down) {
				bottoms = append(bottoms, Cell{X: x, Y: y})
			}
			if !g.Passable(x, y, Up) {
				tops = append(tops, Cell{X: x, Y: y})
			}
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if Blocked(g, x, y) {
				continue
			}
			if !g.Passable(x, y, Left) {
				lefts = append(lefts, Cell{X: x, Y: y})
			}
			if !g.Passable(x, y, Right) {
				rights = append(rights, Cell{X: x, Y: y})
			}
		}
	}

	return Mesh{
		Border:  Border(w, h),
		Tiles:   MergeRects(MergeHorizontal(blocked)),
		Tops:    MergeHorizontal(tops),
		Bottoms: MergeHorizontal(bottoms),
		Lefts:   MergeVertical(lefts),
		Rights:  MergeVertical(rights),
	}
}

// Border returns the wall ring around a w x h map.
func Border(w, h int) [4]Rect {
	t := BorderThickness
	return [4]Rect{
		{X: -t, Y: -t, W: w + 2*t, H: t},
		{X: -t, Y: h, W: w + 2*t, H: t},
		{X: -t, Y: -t, W: t, H: h + 2*t},
		{X: w, Y: -t, W: t, H: h + 2*t},
	}
}

// MergeHorizontal joins row-major cells into one rect per horizontal run.
func MergeHorizontal(cells []Cell) []Rect {
	var list []Rect
	for _, c := range cells {
		if n := len(list); n > 0 {
			last := &list[n-1]
			if last.Y == c.Y && last.X+last.W == c.X {
				last.W++
				continue
			}
		}
		list = append(list, Rect{X: c.X, Y: c.Y, W: 1, H: 1})
	}
	return list
}

// MergeVertical joins column-major cells into one rect per vertical run.
func MergeVertical(cells []Cell) []Rect {
	var list []Rect
	for _, c := range cells {
		if n := len(list); n > 0 {
			last := &list[n-1]
			if last.X == c.X && last.Y+last.H == c.Y {
				last.H++
				continue
			}
		}
		list = append(list, Rect{X: c.X, Y: c.Y, W: 1, H: 1})
	}
	return list
}

// MergeRects stacks one-row runs into taller rects. A run extends the most
// recent rect ending on the row above whose span it fully contains; the parts
// of the run left and right of that span are merged again on their own.
func MergeRects(runs []Rect) []Rect {
	var list []Rect
	for _, r := range runs {
		list = mergeInto(r, list)
	}
	return list
}

func mergeInto(node Rect, list []Rect) []Rect {
	for i := len(list) - 1; i >= 0; i-- {
		rect := &list[i]
		if rect.Y+rect.H != node.Y {
			continue
		}
		if node.X > rect.X || rect.X+rect.W > node.X+node.W {
			continue
		}
		rect.H++

		left, right := rect.X, rect.X+rect.W
		var rest []Rect
		if node.X < left {
			rest = append(rest, Rect{X: node.X, Y: node.Y, W: left - node.X, H: 1})
		}
		if right < node.X+node.W {
			rest = append(rest, Rect{X: right, Y: node.Y, W: node.X + node.W - right, H: 1})
		}
		for _, r := range rest {
			list = mergeInto(r, list)
		}
		return list
	}
	return append(list, node)
}
