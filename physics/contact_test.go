package physics

import (
	"testing"

	"github.com/milk9111/tilephysics/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlatWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld("contacts", DefaultConfig())
	w.SetGravity(0, 0)
	return w
}

func TestContactEdges(t *testing.T) {
	w := newFlatWorld(t)
	a, err := w.CreateBody(1, 0, 0, sensorBox())
	require.NoError(t, err)
	b, err := w.CreateBody(2, 0.03, 0, sensorBox())
	require.NoError(t, err)

	w.Step()
	assert.Equal(t, []int{2}, a.Triggered())
	assert.Equal(t, []int{2}, a.Active())
	assert.Equal(t, []int{1}, b.Triggered())
	assert.True(t, b.IsTouching(1))

	for tick := 0; tick < 5; tick++ {
		w.Step()
		assert.Empty(t, a.Triggered(), "tick %d", tick)
		assert.True(t, a.IsTouching(2), "tick %d", tick)
		assert.True(t, b.IsTouching(1), "tick %d", tick)
	}

	b.SetPosition(5, 5)
	w.Step()
	assert.Empty(t, a.Active())
	assert.Empty(t, a.Triggered())
	assert.Empty(t, b.Active())

	b.SetPosition(0.03, 0)
	w.Step()
	assert.True(t, a.WasTriggered(2))
	assert.True(t, b.WasTriggered(1))
}

func TestContactWithStaticGeometry(t *testing.T) {
	w := newFlatWorld(t)
	w.AddStaticRects([]mesh.Rect{{X: 0, Y: 0, W: 1, H: 1}})
	b, err := w.CreateBody(7, 0.0375, 0.0375, sensorBox())
	require.NoError(t, err)

	w.Step()
	assert.Equal(t, []int{StaticID}, b.Active())
	assert.Equal(t, []int{StaticID}, b.Triggered())

	static := w.Bodies()[0]
	assert.Empty(t, static.Active())
}

func TestUntrackedBodiesAreInvisible(t *testing.T) {
	w := newFlatWorld(t)
	tracked, err := w.CreateBody(1, 0, 0, sensorBox())
	require.NoError(t, err)
	untracked, err := w.CreateUntrackedBody(0.03, 0, sensorBox())
	require.NoError(t, err)

	w.Step()
	assert.Empty(t, tracked.Active())
	assert.Empty(t, untracked.Active())
	_, ok := untracked.ID()
	assert.False(t, ok)
}

func TestFilterGroupOverlapScan(t *testing.T) {
	w := newFlatWorld(t)
	group := -3
	spec := BodySpec{Shape: "box", Size: []float64{48, 48}, FilterGroup: group}
	a, err := w.CreateBody(1, 0, 0, spec)
	require.NoError(t, err)
	b, err := w.CreateBody(2, 0.02, 0.01, spec)
	require.NoError(t, err)
	a.SetVelocity(0, 0)
	b.SetVelocity(0, 0)

	w.Step()
	assert.True(t, a.IsTouching(2))
	assert.True(t, b.IsTouching(1))
	assert.True(t, a.WasTriggered(2))

	w.Step()
	assert.True(t, a.IsTouching(2))
	assert.False(t, a.WasTriggered(2))
}

func TestFilterGroupScanIgnoresOtherGroups(t *testing.T) {
	w := newFlatWorld(t)
	a, err := w.CreateBody(1, 0, 0, BodySpec{Shape: "box", Size: []float64{48, 48}, FilterGroup: -3})
	require.NoError(t, err)
	b, err := w.CreateBody(2, 0.02, 0, BodySpec{Shape: "box", Size: []float64{48, 48}, FilterGroup: -4})
	require.NoError(t, err)
	c, err := w.CreateBody(3, 0.01, 0, BodySpec{Shape: "box", Size: []float64{48, 48}})
	require.NoError(t, err)

	w.scanFilterGroups()
	assert.False(t, a.pending.has(2))
	assert.False(t, b.pending.has(1))
	assert.Empty(t, c.pending.values())
}

func TestFilterGroupScanSkipsSeparatedBodies(t *testing.T) {
	w := newFlatWorld(t)
	spec := BodySpec{Shape: "circle", Size: []float64{16}, FilterGroup: -1}
	a, err := w.CreateBody(1, 0, 0, spec)
	require.NoError(t, err)
	_, err = w.CreateBody(2, 1, 1, spec)
	require.NoError(t, err)

	w.scanFilterGroups()
	assert.Empty(t, a.pending.values())
}

func TestIDSet(t *testing.T) {
	var s idSet
	s.add(3)
	s.add(1)
	s.add(3)
	assert.Equal(t, []int{3, 1}, s.values())

	var o idSet
	o.add(1)
	assert.Equal(t, []int{3}, s.minus(o).values())
	assert.Empty(t, o.minus(s).values())
}
