// Package save snapshots the entities of a running level and restores them.
// Bodies and the physics world are rebuilt on restore and never written out.
package save

import (
	"fmt"

	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
	"github.com/milk9111/tilephysics/ecs/system"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/prefabs"
	"gopkg.in/yaml.v3"
)

// State is a saved level.
type State struct {
	Level    string        `yaml:"level"`
	Gravity  *[2]float64   `yaml:"gravity,omitempty"`
	Entities []EntityState `yaml:"entities"`
}

// EntityState is one saved level entity.
type EntityState struct {
	Name      string              `yaml:"name"`
	Prefab    string              `yaml:"prefab"`
	Transform component.Transform `yaml:"transform"`
	Script    string              `yaml:"script,omitempty"`
}

// Snapshot records every level-spawned entity of w.
func Snapshot(w *ecs.World, levelName string) State {
	state := State{Level: levelName}
	if levelEnt, ok := ecs.First(w, component.LevelComponent.Kind()); ok {
		if g, ok := ecs.Get(w, levelEnt, component.GravityComponent.Kind()); ok {
			state.Gravity = &[2]float64{g.X, g.Y}
		}
	}

	ecs.ForEach(w, component.SpawnedComponent.Kind(), func(e ecs.Entity, spawned *component.Spawned) {
		es := EntityState{Name: spawned.Name, Prefab: spawned.Prefab}
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			es.Transform = *t
		}
		if s, ok := ecs.Get(w, e, component.ScriptComponent.Kind()); ok {
			es.Script = s.Name
		}
		state.Entities = append(state.Entities, es)
	})
	return state
}

func Encode(state State) ([]byte, error) {
	data, err := yaml.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("save: encode: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (State, error) {
	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("save: decode: %w", err)
	}
	if state.Level == "" {
		return State{}, fmt.Errorf("save: decode: %w", ErrNoLevel)
	}
	return state, nil
}

// Restore replaces every entity in w with the saved ones and queues the saved
// level. Bodies come back from the prefab specs once the level is built.
// Nothing is destroyed when a prefab can't be loaded.
func Restore(w *ecs.World, state State, loadPrefab func(name string) (prefabs.Archetype, error)) error {
	if state.Level == "" {
		return ErrNoLevel
	}
	if loadPrefab == nil {
		loadPrefab = prefabs.LoadArchetype
	}

	archetypes := make(map[string]prefabs.Archetype)
	for _, es := range state.Entities {
		if _, ok := archetypes[es.Prefab]; ok {
			continue
		}
		arch, err := loadPrefab(es.Prefab)
		if err != nil {
			return fmt.Errorf("save: restore %s: %w", es.Name, err)
		}
		archetypes[es.Prefab] = arch
	}

	for _, e := range ecs.Entities(w) {
		ecs.DestroyEntity(w, e)
	}

	for _, es := range state.Entities {
		arch := archetypes[es.Prefab]
		if es.Script != "" {
			arch.Script = es.Script
		}
		e := system.SpawnArchetype(w, es.Name, arch, es.Transform.X, es.Transform.Y)
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.Rotation = es.Transform.Rotation
		}
	}

	req := ecs.CreateEntity(w)
	_ = ecs.Add(w, req, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{TargetLevel: state.Level, KeepEntities: true})
	if state.Gravity != nil {
		_ = ecs.Add(w, req, component.GravityRequestComponent.Kind(), &component.GravityRequest{X: state.Gravity[0], Y: state.Gravity[1]})
	}

	logger.For("save").WithField("level", state.Level).WithField("entities", len(state.Entities)).Info("save: restored")
	return nil
}
