package component

import "github.com/milk9111/tilephysics/physics"

// Script runs a tengo script for the entity once per tick.
type Script struct {
	Name string
	// Body is what create_body() requests when the script passes no spec.
	Body *physics.BodySpec
}

var ScriptComponent = NewComponent[Script]()
