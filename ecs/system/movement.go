package system

import (
	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
)

// MovementSystem applies Velocity to the transforms of bodiless entities.
// Bodied entities are moved by the simulator alone.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.VelocityComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, v *component.Velocity, t *component.Transform) {
		if ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			return
		}
		t.X += v.X
		t.Y += v.Y
	})
}
