package physics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilephysics/common"
)

// Shape is the collision shape category of a body.
type Shape int

const (
	ShapeBox Shape = iota + 1
	ShapeCircle
	ShapePolygon
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// ParseShape maps a spec shape name to its category.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "box":
		return ShapeBox, nil
	case "circle":
		return ShapeCircle, nil
	case "polygon":
		return ShapePolygon, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
}

// BodyType is how the simulator moves a body.
type BodyType int

const (
	BodyDynamic BodyType = iota
	BodyStatic
	BodyKinematic
)

// ParseBodyType maps a spec type name; empty means dynamic.
func ParseBodyType(name string) (BodyType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dynamic":
		return BodyDynamic, nil
	case "static":
		return BodyStatic, nil
	case "kinematic":
		return BodyKinematic, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBodyType, name)
	}
}

// BodySpec describes the body an entity asks for.
//
// Size is in display pixels: [width, height] for a box, [radius] for a
// circle. Vertices are polygon points already in simulation units;
// PixelVertices are run through common.PadPolygonVertex first.
type BodySpec struct {
	Type          string       `yaml:"type" json:"type"`
	Shape         string       `yaml:"shape" json:"shape"`
	Size          []float64    `yaml:"size,omitempty" json:"size,omitempty"`
	Vertices      [][2]float64 `yaml:"vertices,omitempty" json:"vertices,omitempty"`
	PixelVertices [][2]float64 `yaml:"pixel_vertices,omitempty" json:"pixel_vertices,omitempty"`

	Density     *float64 `yaml:"density,omitempty" json:"density,omitempty"`
	Friction    *float64 `yaml:"friction,omitempty" json:"friction,omitempty"`
	Restitution *float64 `yaml:"restitution,omitempty" json:"restitution,omitempty"`
	Sensor      bool     `yaml:"sensor,omitempty" json:"sensor,omitempty"`
	FilterGroup int      `yaml:"filter_group,omitempty" json:"filter_group,omitempty"`

	// Origin is the sprite anchor in percent of the frame, [x, y].
	Origin *[2]float64 `yaml:"origin,omitempty" json:"origin,omitempty"`
}

// geometry is a validated spec in simulation units.
type geometry struct {
	kind     Shape
	bodyType BodyType
	halfW    float64
	halfH    float64
	radius   float64
	verts    []cp.Vector
}

// Validate checks the spec without building anything.
func (s BodySpec) Validate() error {
	_, err := s.geometry()
	return err
}

func (s BodySpec) geometry() (geometry, error) {
	kind, err := ParseShape(s.Shape)
	if err != nil {
		return geometry{}, err
	}
	bt, err := ParseBodyType(s.Type)
	if err != nil {
		return geometry{}, err
	}
	g := geometry{kind: kind, bodyType: bt}

	switch kind {
	case ShapeBox:
		if len(s.Size) < 2 || s.Size[0] <= 0 || s.Size[1] <= 0 {
			return geometry{}, fmt.Errorf("%w: box needs [width, height] > 0, got %v", ErrInvalidShapeSize, s.Size)
		}
		w, h := common.ToSim(s.Size[0], s.Size[1])
		g.halfW, g.halfH = common.BoxHalfExtent(w), common.BoxHalfExtent(h)
		if g.halfW <= 0 || g.halfH <= 0 {
			return geometry{}, fmt.Errorf("%w: box %v is smaller than its padding", ErrInvalidShapeSize, s.Size)
		}
	case ShapeCircle:
		if len(s.Size) < 1 || s.Size[0] <= 0 {
			return geometry{}, fmt.Errorf("%w: circle needs [radius] > 0, got %v", ErrInvalidShapeSize, s.Size)
		}
		g.radius = common.ToSimLength(s.Size[0])
	case ShapePolygon:
		for _, v := range s.Vertices {
			g.verts = append(g.verts, cp.Vector{X: v[0], Y: v[1]})
		}
		for _, v := range s.PixelVertices {
			x, y := common.PadPolygonVertex(v[0], v[1])
			g.verts = append(g.verts, cp.Vector{X: x, Y: y})
		}
		if len(g.verts) < 3 {
			return geometry{}, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidShapeSize, len(g.verts))
		}
		area := polygonArea(g.verts)
		if area == 0 {
			return geometry{}, fmt.Errorf("%w: polygon has zero area", ErrInvalidShapeSize)
		}
		if area < 0 {
			slices.Reverse(g.verts)
		}
	}
	return g, nil
}

func (g geometry) area() float64 {
	switch g.kind {
	case ShapeBox:
		return 4 * g.halfW * g.halfH
	case ShapeCircle:
		return cp.AreaForCircle(0, g.radius)
	case ShapePolygon:
		return polygonArea(g.verts)
	}
	return 0
}

func (g geometry) moment(mass float64) float64 {
	switch g.kind {
	case ShapeBox:
		return cp.MomentForBox(mass, 2*g.halfW, 2*g.halfH)
	case ShapeCircle:
		return cp.MomentForCircle(mass, 0, g.radius, cp.Vector{})
	case ShapePolygon:
		return cp.MomentForPoly(mass, len(g.verts), g.verts, cp.Vector{}, 0)
	}
	return 0
}

func (g geometry) newShape(body *cp.Body) *cp.Shape {
	switch g.kind {
	case ShapeCircle:
		return cp.NewCircle(body, g.radius, cp.Vector{})
	case ShapePolygon:
		return cp.NewPolyShapeRaw(body, len(g.verts), g.verts, 0)
	default:
		return cp.NewBox(body, 2*g.halfW, 2*g.halfH, 0)
	}
}

// polygonArea is the signed shoelace area; positive for counter-clockwise.
func polygonArea(verts []cp.Vector) float64 {
	var sum float64
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// material resolves the optional fixture fields against the defaults table.
func (s BodySpec) material(d FixtureDefaults) (density, friction, restitution float64) {
	density, friction, restitution = d.Density, d.Friction, d.Restitution
	if s.Density != nil {
		density = *s.Density
	}
	if s.Friction != nil {
		friction = *s.Friction
	}
	if s.Restitution != nil {
		restitution = *s.Restitution
	}
	return density, friction, restitution
}

// filterFor maps a spec filter group onto a Chipmunk shape filter. Negative
// groups never collide with themselves natively; other groups collide normally.
func filterFor(group int) (cp.ShapeFilter, bool) {
	if group >= 0 {
		return cp.ShapeFilter{}, false
	}
	return cp.ShapeFilter{
		Group:      uint(-group),
		Categories: cp.ALL_CATEGORIES,
		Mask:       cp.ALL_CATEGORIES,
	}, true
}
