package component

// Transform is an entity pose in display pixels and degrees. While the
// entity has a PhysicsBody only the physics system writes it.
type Transform struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

var TransformComponent = NewComponent[Transform]()

// Velocity moves bodiless entities, in pixels per tick.
type Velocity struct {
	X float64
	Y float64
}

var VelocityComponent = NewComponent[Velocity]()

// Origin is the sprite anchor as a fraction of the frame, 0..1 per axis.
type Origin struct {
	X float64
	Y float64
}

var OriginComponent = NewComponent[Origin]()
