package component

import "github.com/milk9111/tilephysics/physics"

// PhysicsBody binds an entity to its body in the current world. The body
// handle is runtime state and never saved.
type PhysicsBody struct {
	Spec physics.BodySpec
	Body *physics.Body `yaml:"-"`
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()

// BodyRequest asks the physics system to attach a body on its next update.
type BodyRequest struct {
	Spec physics.BodySpec
}

var BodyRequestComponent = NewComponent[BodyRequest]()

// Contacts mirrors the body's contact sets after each step. Ids are body
// ids; 0 is level geometry.
type Contacts struct {
	Active    []int
	Triggered []int
}

var ContactsComponent = NewComponent[Contacts]()

// GravityRequest asks the physics system to change world gravity.
type GravityRequest struct {
	X float64
	Y float64
}

var GravityRequestComponent = NewComponent[GravityRequest]()

// Gravity is the current world gravity, kept on the level entity.
type Gravity struct {
	X float64
	Y float64
}

var GravityComponent = NewComponent[Gravity]()
