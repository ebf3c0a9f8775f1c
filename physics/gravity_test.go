package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGravity(t *testing.T) {
	x, y, err := ParseGravity("0.0, 3.0")
	require.NoError(t, err)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 3.0, y)

	x, y, err = ParseGravity(" -1.25 ,0.5 ")
	require.NoError(t, err)
	assert.Equal(t, -1.25, x)
	assert.Equal(t, 0.5, y)

	for _, bad := range []string{"", "1", "1,2,3", "a, 1", "1, NaN", "Inf, 0"} {
		_, _, err := ParseGravity(bad)
		assert.ErrorIs(t, err, ErrInvalidGravity, bad)
	}
}

func TestResolveGravity(t *testing.T) {
	cases := []struct {
		name     string
		override string
		has      bool
		fallback string
		wantX    float64
		wantY    float64
	}{
		{"override", "1, 2", true, "0, 3", 1, 2},
		{"no_override", "1, 2", false, "0, 3", 0, 3},
		{"bad_override", "oops", true, "0, 4", 0, 4},
		{"bad_default", "", false, "nope", fallbackGravityX, fallbackGravityY},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y := ResolveGravity(tc.override, tc.has, tc.fallback)
			assert.Equal(t, tc.wantX, x)
			assert.Equal(t, tc.wantY, y)
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("velocity_threshold: 0.5\nstatic:\n  friction: 0.3\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.VelocityThreshold)
	assert.Equal(t, 0.3, cfg.Static.Friction)
	// Keys left out keep their defaults.
	assert.Equal(t, 0.9, cfg.Static.Restitution)
	assert.Equal(t, 6, cfg.VelocityIterations)
	assert.Equal(t, uint(8), cfg.solverIterations())

	_, err = ParseConfig([]byte("time_step: 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseConfig([]byte("time_step: [\n"))
	assert.Error(t, err)
}
