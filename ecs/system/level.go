package system

import (
	"github.com/milk9111/tilephysics/common"
	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
	"github.com/milk9111/tilephysics/levels"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/prefabs"
	"github.com/sirupsen/logrus"
)

// LevelSystem loads levels on request and spawns their prefab entities.
type LevelSystem struct {
	LoadLevel  func(name string) (*levels.Level, error)
	LoadPrefab func(name string) (prefabs.Archetype, error)
	// Watcher, when set, turns file changes into reloads of the current level.
	Watcher *levels.Watcher

	revision int
	log      *logrus.Entry
}

func NewLevelSystem(watcher *levels.Watcher) *LevelSystem {
	return &LevelSystem{
		LoadLevel:  levels.Load,
		LoadPrefab: prefabs.LoadArchetype,
		Watcher:    watcher,
		log:        logger.For("levels"),
	}
}

func (ls *LevelSystem) Update(w *ecs.World) {
	if ls == nil || w == nil {
		return
	}

	levelEnt, hasLevel := ecs.First(w, component.LevelComponent.Kind())
	if changed := ls.Watcher.Drain(); len(changed) > 0 && hasLevel {
		ls.log.WithField("files", changed).Info("levels: files changed, reloading")
		_ = ecs.Add(w, levelEnt, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{})
	}

	var target string
	keep := false
	for _, e := range ecs.Query(w, component.LevelChangeRequestComponent.Kind()) {
		req, _ := ecs.Get(w, e, component.LevelChangeRequestComponent.Kind())
		target, keep = req.TargetLevel, req.KeepEntities
		ecs.Remove(w, e, component.LevelChangeRequestComponent.Kind())
	}

	reload := false
	for _, e := range ecs.Query(w, component.ReloadRequestComponent.Kind()) {
		reload = true
		ecs.Remove(w, e, component.ReloadRequestComponent.Kind())
	}
	if target == "" && reload && hasLevel {
		if current, ok := ecs.Get(w, levelEnt, component.LevelComponent.Kind()); ok {
			target = current.Name
		}
	}
	if target == "" {
		return
	}

	lvl, err := ls.LoadLevel(target)
	if err != nil {
		ls.log.WithError(err).WithField("level", target).Error("levels: load failed")
		return
	}
	if reload {
		ls.revision++
		lvl.Revision = ls.revision
	}
	ls.apply(w, lvl, !keep)
}

// apply installs lvl and, with spawn set, replaces the spawned entities of
// the previous level with lvl's.
func (ls *LevelSystem) apply(w *ecs.World, lvl *levels.Level, spawn bool) {
	if spawn {
		for _, e := range ecs.Query(w, component.SpawnedComponent.Kind()) {
			ecs.DestroyEntity(w, e)
		}
	}

	levelEnt, ok := ecs.First(w, component.LevelComponent.Kind())
	if !ok {
		levelEnt = ecs.CreateEntity(w)
	}
	_ = ecs.Add(w, levelEnt, component.LevelComponent.Kind(), &component.Level{Name: lvl.Name, Data: lvl})
	_ = ecs.Add(w, levelEnt, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  common.TileToPixel(float64(lvl.Width())),
		Height: common.TileToPixel(float64(lvl.Height())),
	})

	if !spawn {
		ls.log.WithField("level", lvl.ID()).Info("levels: level loaded, entities kept")
		return
	}

	archetypes := make(map[string]prefabs.Archetype)
	spawned := 0
	for _, placed := range lvl.Entities {
		arch, ok := archetypes[placed.Prefab]
		if !ok {
			var err error
			arch, err = ls.LoadPrefab(placed.Prefab)
			if err != nil {
				ls.log.WithError(err).WithFields(logrus.Fields{"entity": placed.Name, "prefab": placed.Prefab}).Warn("levels: skipping entity")
				continue
			}
			archetypes[placed.Prefab] = arch
		}
		SpawnArchetype(w, placed.Name, arch, common.TileToPixel(placed.X), common.TileToPixel(placed.Y))
		spawned++
	}

	ls.log.WithFields(logrus.Fields{"level": lvl.ID(), "entities": spawned}).Info("levels: level loaded")
}

// SpawnArchetype creates an entity from a prefab at (x, y) display pixels.
// Bodies are requested, not created; the physics system attaches them.
func SpawnArchetype(w *ecs.World, name string, arch prefabs.Archetype, x, y float64) ecs.Entity {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.SpawnedComponent.Kind(), &component.Spawned{Name: name, Prefab: arch.Name})
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y})
	if arch.Body != nil {
		_ = ecs.Add(w, e, component.BodyRequestComponent.Kind(), &component.BodyRequest{Spec: *arch.Body})
	}
	if arch.Script != "" {
		_ = ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Name: arch.Script, Body: arch.BodyOnDemand})
	}
	if arch.Velocity != nil {
		_ = ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{X: arch.Velocity.X, Y: arch.Velocity.Y})
	}
	return e
}
