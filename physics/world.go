// Package physics runs the rigid-body simulation of one loaded level and
// tracks which bodies touch each other.
package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilephysics/common"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/mesh"
	"github.com/sirupsen/logrus"
)

const (
	collisionTypeStatic cp.CollisionType = iota + 1
	collisionTypeBody
)

// World owns the Chipmunk space of one level.
type World struct {
	levelID string
	cfg     Config
	space   *cp.Space
	rng     *rand.Rand
	log     *logrus.Entry

	velocityThreshold float64

	bodies []*Body
	byID   map[int]*Body

	// touching collects the pairs the solver reported during the current step.
	touching []bodyPair
	// slow holds this step's contacts that approach under the threshold.
	slow  map[*cp.Arbiter]struct{}
	steps uint64
}

type bodyPair struct {
	a, b *Body
}

// NewWorld creates an empty world with zero gravity.
func NewWorld(levelID string, cfg Config) *World {
	space := cp.NewSpace()
	space.Iterations = cfg.solverIterations()
	space.SetGravity(cp.Vector{})
	if cfg.CollisionSlop > 0 {
		space.SetCollisionSlop(cfg.CollisionSlop)
	}
	if cfg.SleepTime > 0 {
		space.SleepTimeThreshold = cfg.SleepTime
	}

	w := &World{
		levelID: levelID,
		cfg:     cfg,
		space:   space,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		log:     logger.For("physics").WithField("level", levelID),
		byID:    make(map[int]*Body),
		slow:    make(map[*cp.Arbiter]struct{}),
	}
	w.setupHandlers()
	return w
}

// LevelID returns the level the world was built for.
func (w *World) LevelID() string {
	return w.levelID
}

// Config returns the tuning the world runs with.
func (w *World) Config() Config {
	return w.cfg
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// Steps returns how many times the world has been stepped.
func (w *World) Steps() uint64 {
	return w.steps
}

// Gravity returns the current gravity vector.
func (w *World) Gravity() (float64, float64) {
	g := w.space.Gravity()
	return g.X, g.Y
}

// VelocityThreshold returns the restitution threshold the solver uses on the
// next step.
func (w *World) VelocityThreshold() float64 {
	return w.velocityThreshold
}

// SetGravity changes gravity, retunes the velocity threshold and nudges every
// dynamic body so resting bodies respond to the new pull.
func (w *World) SetGravity(x, y float64) {
	w.space.SetGravity(cp.Vector{X: x, Y: y})
	if isFlat(x, y, w.cfg.FlatGravityBand) {
		w.velocityThreshold = 0
	} else {
		w.velocityThreshold = w.cfg.VelocityThreshold
	}

	n := w.cfg.NudgeImpulse
	for _, b := range w.bodies {
		if b.bodyType != BodyDynamic {
			continue
		}
		b.ApplyImpulse(w.randomIn(-n, n), w.randomIn(-n, n))
		b.body.Activate()
	}
	w.log.WithFields(logrus.Fields{"x": x, "y": y, "velocity_threshold": w.velocityThreshold}).Debug("physics: gravity set")
}

func (w *World) randomIn(lo, hi float64) float64 {
	return lo + w.rng.Float64()*(hi-lo)
}

// Step advances the simulation by one fixed tick and then updates every
// body's contact sets.
func (w *World) Step() {
	if w == nil || w.space == nil {
		panic("physics: Step called with no world built")
	}
	w.touching = w.touching[:0]
	clear(w.slow)
	w.space.Step(w.cfg.TimeStep)
	w.steps++
	w.trackContacts()
}

// Bodies returns every body in creation order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Body looks up a body by non-zero id.
func (w *World) Body(id int) (*Body, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// AddStaticRects creates one static box body per tile rect.
func (w *World) AddStaticRects(rects []mesh.Rect) {
	for _, r := range rects {
		if r.W <= 0 || r.H <= 0 {
			w.log.WithField("rect", r).Warn("physics: skipping empty static rect")
			continue
		}
		w.addStaticRect(r)
	}
}

func (w *World) addStaticRect(r mesh.Rect) *Body {
	sizeX, sizeY := common.ToSim(common.TileToPixel(float64(r.W)), common.TileToPixel(float64(r.H)))
	posX, posY := common.ToSim(common.TileToPixel(float64(r.X)), common.TileToPixel(float64(r.Y)))

	cpBody := cp.NewStaticBody()
	cpBody.SetPosition(cp.Vector{X: posX + sizeX/2, Y: posY + sizeY/2})

	shape := cp.NewBox(cpBody, 2*common.BoxHalfExtent(sizeX), 2*common.BoxHalfExtent(sizeY), 0)
	shape.SetFriction(w.cfg.Static.Friction)
	shape.SetElasticity(w.cfg.Static.Restitution)
	shape.SetCollisionType(collisionTypeStatic)

	b := &Body{
		world:    w,
		body:     cpBody,
		fixtures: []*cp.Shape{shape},
		id:       StaticID,
		tracked:  true,
		shape:    ShapeBox,
		bodyType: BodyStatic,
	}
	cpBody.UserData = b
	shape.UserData = b

	w.space.AddBody(cpBody)
	w.space.AddShape(shape)
	w.bodies = append(w.bodies, b)
	return b
}

// CreateBody builds a tracked body with the given id at (x, y) in simulation units.
func (w *World) CreateBody(id int, x, y float64, spec BodySpec) (*Body, error) {
	if id < 1 {
		return nil, fmt.Errorf("physics: create body: id must be positive, got %d", id)
	}
	if _, exists := w.byID[id]; exists {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateBodyID, id)
	}
	b, err := w.newBody(x, y, spec)
	if err != nil {
		return nil, err
	}
	b.id = id
	b.tracked = true
	w.byID[id] = b
	return b, nil
}

// CreateUntrackedBody builds a body that never enters contact bookkeeping.
func (w *World) CreateUntrackedBody(x, y float64, spec BodySpec) (*Body, error) {
	return w.newBody(x, y, spec)
}

func (w *World) newBody(x, y float64, spec BodySpec) (*Body, error) {
	geo, err := spec.geometry()
	if err != nil {
		return nil, err
	}
	density, friction, restitution := spec.material(w.cfg.Fixture)

	var cpBody *cp.Body
	switch geo.bodyType {
	case BodyStatic:
		cpBody = cp.NewStaticBody()
	case BodyKinematic:
		cpBody = cp.NewKinematicBody()
	default:
		mass := density * geo.area()
		if mass <= 0 {
			mass = 1
		}
		cpBody = cp.NewBody(mass, geo.moment(mass))
		w.applyDamping(cpBody)
	}
	cpBody.SetPosition(cp.Vector{X: x, Y: y})

	shape := geo.newShape(cpBody)
	shape.SetFriction(friction)
	shape.SetElasticity(restitution)
	shape.SetSensor(spec.Sensor)
	shape.SetCollisionType(collisionTypeBody)
	if filter, ok := filterFor(spec.FilterGroup); ok {
		shape.SetFilter(filter)
	}

	b := &Body{
		world:       w,
		body:        cpBody,
		fixtures:    []*cp.Shape{shape},
		shape:       geo.kind,
		bodyType:    geo.bodyType,
		filterGroup: spec.FilterGroup,
	}
	cpBody.UserData = b
	shape.UserData = b

	w.space.AddBody(cpBody)
	w.space.AddShape(shape)
	w.bodies = append(w.bodies, b)
	return b, nil
}

// applyDamping slows a dynamic body the way per-body linear and angular
// damping does: v *= 1 / (1 + dt*c).
func (w *World) applyDamping(body *cp.Body) {
	linear, angular := w.cfg.LinearDamping, w.cfg.AngularDamping
	if linear <= 0 && angular <= 0 {
		return
	}
	body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
		body.SetVelocityVector(body.Velocity().Mult(1 / (1 + dt*linear)))
		body.SetAngularVelocity(body.AngularVelocity() / (1 + dt*angular))
	})
}

// RemoveBody takes a body and its fixtures out of the space.
func (w *World) RemoveBody(b *Body) {
	if b == nil || b.world != w {
		return
	}
	for _, shape := range b.fixtures {
		w.space.RemoveShape(shape)
	}
	w.space.RemoveBody(b.body)
	if b.tracked && b.id != StaticID && w.byID[b.id] == b {
		delete(w.byID, b.id)
	}
	if i := indexOf(w.bodies, b); i >= 0 {
		w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
	}
	b.world = nil
}

func indexOf(bodies []*Body, b *Body) int {
	for i, other := range bodies {
		if other == b {
			return i
		}
	}
	return -1
}

func (w *World) setupHandlers() {
	handler := w.space.NewWildcardCollisionHandler(collisionTypeBody)
	handler.UserData = w
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return true
		}
		world.recordTouch(arb)
		world.markSlowContact(arb)
		return true
	}
	handler.PostSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		if world, ok := userData.(*World); ok && world != nil {
			world.cancelBounce(arb)
		}
	}
}

func (w *World) recordTouch(arb *cp.Arbiter) {
	bodyA, bodyB := arb.Bodies()
	a, okA := bodyA.UserData.(*Body)
	b, okB := bodyB.UserData.(*Body)
	if !okA || !okB {
		return
	}
	w.touching = append(w.touching, bodyPair{a: a, b: b})
}

// markSlowContact remembers contacts approaching slower than the velocity
// threshold. Their bounce is cancelled once the solver has run.
func (w *World) markSlowContact(arb *cp.Arbiter) {
	if w.velocityThreshold <= 0 {
		return
	}
	bodyA, bodyB := arb.Bodies()
	set := arb.ContactPointSet()
	for i := 0; i < set.Count; i++ {
		p := set.Points[i].PointA
		rel := bodyB.VelocityAtWorldPoint(p).Sub(bodyA.VelocityAtWorldPoint(p))
		if -rel.Dot(set.Normal) >= w.velocityThreshold {
			return
		}
	}
	if set.Count > 0 {
		w.slow[arb] = struct{}{}
	}
}

// cancelBounce removes the separating normal velocity a slow contact picked
// up from restitution, split between the bodies by inverse mass.
func (w *World) cancelBounce(arb *cp.Arbiter) {
	if _, ok := w.slow[arb]; !ok {
		return
	}
	bodyA, bodyB := arb.Bodies()
	set := arb.ContactPointSet()
	if set.Count == 0 {
		return
	}
	n := arb.Normal()
	var sep float64
	for i := 0; i < set.Count; i++ {
		p := set.Points[i].PointA
		sep += bodyB.VelocityAtWorldPoint(p).Sub(bodyA.VelocityAtWorldPoint(p)).Dot(n)
	}
	sep /= float64(set.Count)
	if sep <= 0 {
		return
	}

	invA, invB := inverseMass(bodyA), inverseMass(bodyB)
	total := invA + invB
	if total == 0 {
		return
	}
	if invA > 0 {
		bodyA.SetVelocityVector(bodyA.Velocity().Add(n.Mult(sep * invA / total)))
	}
	if invB > 0 {
		bodyB.SetVelocityVector(bodyB.Velocity().Sub(n.Mult(sep * invB / total)))
	}
}

func inverseMass(b *cp.Body) float64 {
	if b.GetType() != cp.BODY_DYNAMIC {
		return 0
	}
	m := b.Mass()
	if m <= 0 || math.IsInf(m, 1) {
		return 0
	}
	return 1 / m
}
