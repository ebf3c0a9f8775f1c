package physics

import (
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/mesh"
	"github.com/sirupsen/logrus"
)

// Level is what the lifecycle needs to know about a loaded map.
type Level interface {
	mesh.Grid
	// ID identifies the level; a world built for the same id is reused.
	ID() string
	// GravityOverride returns the level's declared gravity string, if any.
	GravityOverride() (string, bool)
}

// Lifecycle creates and discards the world as levels load and unload. It is
// the only owner allowed to replace the world.
type Lifecycle struct {
	cfg   Config
	world *World
	log   *logrus.Entry
}

// NewLifecycle returns a lifecycle with no world built.
func NewLifecycle(cfg Config) *Lifecycle {
	return &Lifecycle{cfg: cfg, log: logger.For("physics")}
}

// World returns the current world, or nil before the first Build.
func (l *Lifecycle) World() *World {
	if l == nil {
		return nil
	}
	return l.world
}

// Build makes sure a world exists for level. It reports true when a new world
// replaced the old one, meaning every previously issued body handle is stale.
func (l *Lifecycle) Build(level Level) (*World, bool) {
	if l.world != nil && l.world.LevelID() == level.ID() {
		return l.world, false
	}
	l.Discard()

	w := NewWorld(level.ID(), l.cfg)
	override, ok := level.GravityOverride()
	w.SetGravity(ResolveGravity(override, ok, l.cfg.DefaultGravity))

	m := mesh.Build(level)
	w.AddStaticRects(m.Rects())
	l.world = w

	gx, gy := w.Gravity()
	l.log.WithFields(logrus.Fields{
		"level":   level.ID(),
		"rects":   len(m.Tiles),
		"gravity": [2]float64{gx, gy},
	}).Info("physics: world built")
	return w, true
}

// Discard drops the current world, e.g. on level unload.
func (l *Lifecycle) Discard() {
	if l.world == nil {
		return
	}
	l.log.WithField("level", l.world.LevelID()).Debug("physics: world discarded")
	l.world = nil
}

// Step advances the current world one tick. Stepping before Build is a
// lifecycle ordering bug and panics.
func (l *Lifecycle) Step() {
	if l == nil || l.world == nil {
		panic("physics: Step called with no world built")
	}
	l.world.Step()
}

// SetGravity changes gravity of the current world.
func (l *Lifecycle) SetGravity(x, y float64) {
	if l == nil || l.world == nil {
		panic("physics: SetGravity called with no world built")
	}
	l.world.SetGravity(x, y)
}
