package system

import (
	"errors"
	"fmt"

	"github.com/milk9111/tilephysics/common"
	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/physics"
	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyAttached = errors.New("physics system: entity already has a body")
	ErrNoWorld         = errors.New("physics system: no world built")
)

// PhysicsSystem keeps the physics world in step with the loaded level and
// mirrors body state back into components.
type PhysicsSystem struct {
	lifecycle *physics.Lifecycle
	log       *logrus.Entry

	// bound maps body ids to the entity they were attached for.
	bound map[int]boundBody
	// lastID is the last body id handed out. Ids are never reused, so a
	// contact set can't confuse a new body with a removed one.
	lastID int
}

type boundBody struct {
	entity ecs.Entity
	body   *physics.Body
}

func NewPhysicsSystem(lifecycle *physics.Lifecycle) *PhysicsSystem {
	if lifecycle == nil {
		lifecycle = physics.NewLifecycle(physics.DefaultConfig())
	}
	return &PhysicsSystem{
		lifecycle: lifecycle,
		log:       logger.For("physics"),
		bound:     make(map[int]boundBody),
	}
}

func (ps *PhysicsSystem) Lifecycle() *physics.Lifecycle {
	return ps.lifecycle
}

// World returns the current physics world, or nil.
func (ps *PhysicsSystem) World() *physics.World {
	if ps == nil || ps.lifecycle == nil {
		return nil
	}
	return ps.lifecycle.World()
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	levelEnt, ok := ecs.First(w, component.LevelComponent.Kind())
	var level *component.Level
	if ok {
		level, _ = ecs.Get(w, levelEnt, component.LevelComponent.Kind())
	}
	if level == nil || level.Data == nil {
		// No level, no world: nothing is left to step.
		if ps.lifecycle.World() != nil {
			ps.lifecycle.Discard()
			ps.teardown(w)
		}
		return
	}

	if _, rebuilt := ps.lifecycle.Build(level.Data); rebuilt {
		ps.teardown(w)
	}

	ps.cleanupEntities(w)
	ps.applyGravityRequests(w)
	ps.attachRequested(w)

	ps.lifecycle.Step()

	ps.syncTransforms(w)
	ps.syncContacts(w)

	gx, gy := ps.lifecycle.World().Gravity()
	_ = ecs.Add(w, levelEnt, component.GravityComponent.Kind(), &component.Gravity{X: gx, Y: gy})
}

// AttachBody creates a body for e at its transform under a fresh body id.
func (ps *PhysicsSystem) AttachBody(w *ecs.World, e ecs.Entity, spec physics.BodySpec) (*physics.Body, error) {
	if ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
		return nil, fmt.Errorf("%w: entity %v", ErrAlreadyAttached, e)
	}
	world := ps.World()
	if world == nil {
		return nil, ErrNoWorld
	}
	if !ecs.IsAlive(w, e) {
		return nil, fmt.Errorf("physics system: attach body: %w", component.ErrEntityNotAlive)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var x, y, angle float64
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		x, y = common.ToSim(t.X, t.Y)
		angle = common.DegToRad(t.Rotation)
	} else {
		_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{})
	}

	id := ps.lastID + 1
	body, err := world.CreateBody(id, x, y, spec)
	if err != nil {
		return nil, err
	}
	ps.lastID = id
	if angle != 0 {
		body.SetAngle(angle)
	}
	ps.bound[id] = boundBody{entity: e, body: body}

	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Spec: spec, Body: body}); err != nil {
		world.RemoveBody(body)
		delete(ps.bound, id)
		return nil, err
	}
	_ = ecs.Add(w, e, component.ContactsComponent.Kind(), &component.Contacts{})
	if spec.Origin != nil {
		_ = ecs.Add(w, e, component.OriginComponent.Kind(), &component.Origin{X: spec.Origin[0] / 100, Y: spec.Origin[1] / 100})
	}
	ps.log.WithFields(logrus.Fields{"entity": e.ID(), "body": id, "shape": body.Shape().String()}).Debug("physics system: body attached")
	return body, nil
}

// DetachBody removes e's body from the world, if it has one.
func (ps *PhysicsSystem) DetachBody(w *ecs.World, e ecs.Entity) bool {
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return false
	}
	if bodyComp.Body != nil {
		if world := ps.World(); world != nil {
			world.RemoveBody(bodyComp.Body)
		}
		id, _ := bodyComp.Body.ID()
		delete(ps.bound, id)
	}
	ecs.Remove(w, e, component.PhysicsBodyComponent.Kind())
	ecs.Remove(w, e, component.ContactsComponent.Kind())
	return true
}

// Entity returns the entity a body id was attached for.
func (ps *PhysicsSystem) Entity(w *ecs.World, id int) (ecs.Entity, bool) {
	b, ok := ps.bound[id]
	if !ok || !ecs.IsAlive(w, b.entity) {
		return 0, false
	}
	return b.entity, true
}

// BodyID returns the id of e's body, as it appears in contact sets.
func BodyID(w *ecs.World, e ecs.Entity) (int, bool) {
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || bodyComp.Body == nil {
		return 0, false
	}
	id, _ := bodyComp.Body.ID()
	return id, true
}

// Pose returns the body pose of e in display pixels and degrees.
func Pose(w *ecs.World, e ecs.Entity) (x, y, angle float64, ok bool) {
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || bodyComp.Body == nil {
		return 0, 0, 0, false
	}
	x, y, angle = bodyComp.Body.Pose()
	return x, y, angle, true
}

// Contacts returns e's active and triggered contact ids. Asking for the
// contacts of an entity without a body is a bug in the caller.
func Contacts(w *ecs.World, e ecs.Entity) (active, triggered []int) {
	bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || bodyComp.Body == nil {
		panic(fmt.Sprintf("physics system: contacts of entity %v with no body", e))
	}
	return bodyComp.Body.Active(), bodyComp.Body.Triggered()
}

// teardown forgets every body; the world they lived in is gone.
func (ps *PhysicsSystem) teardown(w *ecs.World) {
	for _, e := range ecs.Query(w, component.PhysicsBodyComponent.Kind()) {
		ecs.Remove(w, e, component.PhysicsBodyComponent.Kind())
		ecs.Remove(w, e, component.ContactsComponent.Kind())
	}
	clear(ps.bound)
}

// cleanupEntities removes bodies whose entity died or dropped its
// PhysicsBody component.
func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	world := ps.World()
	for id, b := range ps.bound {
		bodyComp, ok := ecs.Get(w, b.entity, component.PhysicsBodyComponent.Kind())
		if ok && bodyComp.Body == b.body {
			continue
		}
		if world != nil {
			world.RemoveBody(b.body)
		}
		delete(ps.bound, id)
	}
}

func (ps *PhysicsSystem) applyGravityRequests(w *ecs.World) {
	ecs.ForEach(w, component.GravityRequestComponent.Kind(), func(e ecs.Entity, req *component.GravityRequest) {
		ps.lifecycle.SetGravity(req.X, req.Y)
		ecs.Remove(w, e, component.GravityRequestComponent.Kind())
	})
}

func (ps *PhysicsSystem) attachRequested(w *ecs.World) {
	ecs.ForEach(w, component.BodyRequestComponent.Kind(), func(e ecs.Entity, req *component.BodyRequest) {
		ecs.Remove(w, e, component.BodyRequestComponent.Kind())
		if _, err := ps.AttachBody(w, e, req.Spec); err != nil {
			entry := ps.log.WithError(err).WithField("entity", e.ID())
			if errors.Is(err, ErrAlreadyAttached) {
				entry.Debug("physics system: body request ignored")
				return
			}
			entry.Warn("physics system: body request failed")
		}
	})
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, t *component.Transform) {
		if bodyComp.Body == nil {
			return
		}
		t.X, t.Y, t.Rotation = bodyComp.Body.Pose()
	})
}

func (ps *PhysicsSystem) syncContacts(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.ContactsComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, c *component.Contacts) {
		if bodyComp.Body == nil {
			return
		}
		c.Active = bodyComp.Body.Active()
		c.Triggered = bodyComp.Body.Triggered()
	})
}
