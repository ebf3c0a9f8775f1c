package save

import (
	"errors"
	"testing"

	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
	"github.com/milk9111/tilephysics/ecs/system"
	"github.com/milk9111/tilephysics/levels"
	"github.com/milk9111/tilephysics/physics"
	"github.com/milk9111/tilephysics/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPrefab(name string) (prefabs.Archetype, error) {
	switch name {
	case "crate":
		return prefabs.Archetype{Name: "crate", Body: &physics.BodySpec{Shape: "box", Size: []float64{48, 48}}}, nil
	case "lamp":
		return prefabs.Archetype{Name: "lamp", Script: "glow"}, nil
	}
	return prefabs.Archetype{}, errors.New("no such prefab")
}

func flatLevel() *levels.Level {
	g := "0, 0"
	return &levels.Level{Name: "room", W: 10, H: 10, Gravity: &g, Entities: []levels.Entity{
		{Name: "box", Prefab: "crate", X: 2, Y: 2},
		{Name: "light", Prefab: "lamp", X: 5, Y: 1},
	}}
}

func newScheduler(t *testing.T) (*ecs.Scheduler, *system.PhysicsSystem) {
	t.Helper()
	ls := system.NewLevelSystem(nil)
	ls.LoadLevel = func(name string) (*levels.Level, error) {
		if name != "room" {
			return nil, errors.New("no such level")
		}
		return flatLevel(), nil
	}
	ls.LoadPrefab = loadPrefab
	ps := system.NewPhysicsSystem(physics.NewLifecycle(physics.DefaultConfig()))
	return ecs.NewScheduler(ls, ps), ps
}

func TestSnapshotSkipsBodies(t *testing.T) {
	scheduler, _ := newScheduler(t)
	w := ecs.NewWorld()
	req := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, req, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{TargetLevel: "room"}))
	scheduler.Update(w)

	state := Snapshot(w, "room")
	assert.Equal(t, "room", state.Level)
	require.NotNil(t, state.Gravity)
	assert.Equal(t, [2]float64{0, 0}, *state.Gravity)
	require.Len(t, state.Entities, 2)
	assert.Equal(t, "box", state.Entities[0].Name)
	assert.Equal(t, "crate", state.Entities[0].Prefab)
	assert.Equal(t, "glow", state.Entities[1].Script)

	data, err := Encode(state)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "body")

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}

func TestDecodeNeedsLevel(t *testing.T) {
	_, err := Decode([]byte("entities: []\n"))
	assert.ErrorIs(t, err, ErrNoLevel)

	_, err = Decode([]byte("level: [unterminated"))
	assert.Error(t, err)
}

func TestRestoreRebuildsBodies(t *testing.T) {
	scheduler, ps := newScheduler(t)
	w := ecs.NewWorld()

	state := State{
		Level:   "room",
		Gravity: &[2]float64{0.5, -1},
		Entities: []EntityState{
			{Name: "box", Prefab: "crate", Transform: component.Transform{X: 300, Y: 200, Rotation: 90}},
			{Name: "light", Prefab: "lamp", Transform: component.Transform{X: 10, Y: 10}, Script: "flicker"},
		},
	}
	stray := ecs.CreateEntity(w)
	require.NoError(t, Restore(w, state, loadPrefab))
	assert.False(t, ecs.IsAlive(w, stray))

	scheduler.Update(w)

	spawned := ecs.Query(w, component.SpawnedComponent.Kind())
	require.Len(t, spawned, 2)

	box := spawned[0]
	x, y, angle, ok := system.Pose(w, box)
	require.True(t, ok)
	assert.InDelta(t, 300, x, 1)
	assert.InDelta(t, 200, y, 1)
	assert.InDelta(t, 90, angle, 1)

	script, ok := ecs.Get(w, spawned[1], component.ScriptComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, "flicker", script.Name)

	gx, gy := ps.World().Gravity()
	assert.Equal(t, 0.5, gx)
	assert.Equal(t, -1.0, gy)
}

func TestRestoreUnknownPrefabKeepsWorld(t *testing.T) {
	w := ecs.NewWorld()
	keep := ecs.CreateEntity(w)

	err := Restore(w, State{Level: "room", Entities: []EntityState{{Name: "x", Prefab: "nope"}}}, loadPrefab)
	assert.Error(t, err)
	assert.True(t, ecs.IsAlive(w, keep))

	assert.ErrorIs(t, Restore(w, State{}, loadPrefab), ErrNoLevel)
}
