package physics

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilephysics/common"
)

// StaticID is the id carried by every body built from level geometry.
const StaticID = 0

// Body is one simulated rigid body and its contact bookkeeping.
type Body struct {
	world    *World
	body     *cp.Body
	fixtures []*cp.Shape

	id          int
	tracked     bool
	shape       Shape
	bodyType    BodyType
	filterGroup int

	pending   idSet
	active    idSet
	triggered idSet
}

// ID returns the body id and whether the body takes part in contact tracking.
func (b *Body) ID() (int, bool) {
	return b.id, b.tracked
}

// Shape returns the shape category of the first fixture.
func (b *Body) Shape() Shape {
	return b.shape
}

// Type returns how the simulator moves the body.
func (b *Body) Type() BodyType {
	return b.bodyType
}

// FilterGroup returns the filter group of the first fixture.
func (b *Body) FilterGroup() int {
	return b.filterGroup
}

// World returns the world the body was created in.
func (b *Body) World() *World {
	return b.world
}

// Handle exposes the underlying Chipmunk body.
func (b *Body) Handle() *cp.Body {
	return b.body
}

// Fixtures returns the shapes attached to the body, first fixture first.
func (b *Body) Fixtures() []*cp.Shape {
	return b.fixtures
}

// Position returns the body position in simulation units.
func (b *Body) Position() (float64, float64) {
	p := b.body.Position()
	return p.X, p.Y
}

// Angle returns the body angle in radians.
func (b *Body) Angle() float64 {
	return b.body.Angle()
}

// Velocity returns the linear velocity in simulation units per second.
func (b *Body) Velocity() (float64, float64) {
	v := b.body.Velocity()
	return v.X, v.Y
}

// Pose returns the display-space position and the angle in degrees.
func (b *Body) Pose() (x, y, angleDeg float64) {
	p := b.body.Position()
	x, y = common.ToDisplay(p.X, p.Y)
	return x, y, common.RadToDeg(b.body.Angle())
}

// Active returns the ids touching this body as of the last step.
func (b *Body) Active() []int {
	return b.active.values()
}

// Triggered returns the ids that started touching this body on the last step.
func (b *Body) Triggered() []int {
	return b.triggered.values()
}

// IsTouching reports whether id is in the active set.
func (b *Body) IsTouching(id int) bool {
	return b.active.has(id)
}

// WasTriggered reports whether id is in the rising-edge set.
func (b *Body) WasTriggered(id int) bool {
	return b.triggered.has(id)
}

// ApplyImpulse pushes the body at its centre, in simulation units.
func (b *Body) ApplyImpulse(x, y float64) {
	if b.bodyType != BodyDynamic {
		return
	}
	b.body.ApplyImpulseAtWorldPoint(cp.Vector{X: x, Y: y}, b.body.Position())
}

// SetPosition teleports the body, in simulation units.
func (b *Body) SetPosition(x, y float64) {
	b.body.SetPosition(cp.Vector{X: x, Y: y})
	if b.bodyType == BodyDynamic {
		b.body.Activate()
	}
}

// SetAngle turns the body to rad radians.
func (b *Body) SetAngle(rad float64) {
	b.body.SetAngle(rad)
}

// SetVelocity overrides the linear velocity, in simulation units per second.
func (b *Body) SetVelocity(x, y float64) {
	b.body.SetVelocity(x, y)
}

// rollContacts turns this step's pending set into the visible sets.
func (b *Body) rollContacts() {
	b.triggered = b.pending.minus(b.active)
	b.active = b.pending
	b.pending = idSet{}
}

// idSet is a small insertion-ordered set of body ids.
type idSet struct {
	ids []int
}

func (s *idSet) add(id int) {
	if !s.has(id) {
		s.ids = append(s.ids, id)
	}
}

func (s idSet) has(id int) bool {
	return slices.Contains(s.ids, id)
}

func (s idSet) minus(o idSet) idSet {
	var out idSet
	for _, id := range s.ids {
		if !o.has(id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

func (s idSet) values() []int {
	return slices.Clone(s.ids)
}
