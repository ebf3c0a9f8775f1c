package physics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Material is the surface response of a fixture.
type Material struct {
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// FixtureDefaults fills the optional fields of a BodySpec.
type FixtureDefaults struct {
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// Config tunes one simulation world.
type Config struct {
	TimeStep           float64 `yaml:"time_step"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`

	// VelocityThreshold is the relative normal speed under which contacts are
	// solved inelastically. It is forced to 0 while gravity is flat.
	VelocityThreshold float64 `yaml:"velocity_threshold"`
	FlatGravityBand   float64 `yaml:"flat_gravity_band"`
	NudgeImpulse      float64 `yaml:"nudge_impulse"`
	Seed              int64   `yaml:"seed"`

	CollisionSlop float64 `yaml:"collision_slop"`
	// SleepTime enables body sleeping after this many idle seconds; 0 disables it.
	SleepTime float64 `yaml:"sleep_time"`

	DefaultGravity string `yaml:"default_gravity"`

	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`

	Static  Material        `yaml:"static"`
	Fixture FixtureDefaults `yaml:"fixture"`
}

// DefaultConfig returns the tuning the subsystem ships with.
func DefaultConfig() Config {
	return Config{
		TimeStep:           1.0 / 60.0,
		VelocityIterations: 6,
		PositionIterations: 2,
		VelocityThreshold:  0.9,
		FlatGravityBand:    0.1,
		NudgeImpulse:       0.001,
		Seed:               1,
		CollisionSlop:      0.001,
		DefaultGravity:     "0.0, 3.0",
		LinearDamping:      1.5,
		AngularDamping:     1,
		Static:             Material{Friction: 0.1, Restitution: 0.9},
		Fixture:            FixtureDefaults{Density: 0, Friction: 0.2, Restitution: 0},
	}
}

// LoadConfig reads a yaml file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("physics: load config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes yaml over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("physics: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the solver cannot run with.
func (c Config) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("%w: time_step must be positive, got %v", ErrInvalidConfig, c.TimeStep)
	}
	if c.VelocityIterations < 1 {
		return fmt.Errorf("%w: velocity_iterations must be at least 1, got %d", ErrInvalidConfig, c.VelocityIterations)
	}
	if c.PositionIterations < 0 {
		return fmt.Errorf("%w: position_iterations must not be negative, got %d", ErrInvalidConfig, c.PositionIterations)
	}
	if c.VelocityThreshold < 0 || c.FlatGravityBand < 0 || c.NudgeImpulse < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) solverIterations() uint {
	return uint(c.VelocityIterations + c.PositionIterations)
}
