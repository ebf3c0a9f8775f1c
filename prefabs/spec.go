package prefabs

import (
	"fmt"

	"github.com/milk9111/tilephysics/physics"
	"gopkg.in/yaml.v3"
)

// Archetype is a named entity template placed by levels.
type Archetype struct {
	Name string `yaml:"name"`

	// Body is requested as soon as the entity spawns. Leave it empty and set
	// BodyOnDemand when the entity's script creates the body itself.
	Body         *physics.BodySpec `yaml:"body"`
	BodyOnDemand *physics.BodySpec `yaml:"body_on_demand"`

	Script   string        `yaml:"script"`
	Velocity *VelocitySpec `yaml:"velocity"`
}

// VelocitySpec moves bodiless entities; pixels per tick.
type VelocitySpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// BodySpec returns whichever body the archetype declares, if any.
func (a Archetype) BodySpec() (physics.BodySpec, bool) {
	switch {
	case a.Body != nil:
		return *a.Body, true
	case a.BodyOnDemand != nil:
		return *a.BodyOnDemand, true
	}
	return physics.BodySpec{}, false
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadArchetype loads and validates a prefab by name.
func LoadArchetype(name string) (Archetype, error) {
	a, err := LoadSpec[Archetype](name)
	if err != nil {
		return Archetype{}, err
	}
	if a.Name == "" {
		a.Name = name
	}
	if spec, ok := a.BodySpec(); ok {
		if err := spec.Validate(); err != nil {
			return Archetype{}, fmt.Errorf("prefabs: %s body: %w", name, err)
		}
	}
	return a, nil
}

// LoadPhysicsConfig reads config/physics.yaml over the built-in defaults.
func LoadPhysicsConfig() (physics.Config, error) {
	data, err := LoadConfig("physics.yaml")
	if err != nil {
		return physics.Config{}, fmt.Errorf("prefabs: load physics config: %w", err)
	}
	return physics.ParseConfig(data)
}
