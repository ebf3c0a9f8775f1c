package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/tilephysics/common"
	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
	"github.com/milk9111/tilephysics/ecs/system"
	"github.com/milk9111/tilephysics/levels"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/physics"
	"github.com/milk9111/tilephysics/save"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	markerSize = 6
)

// gravityPresets are cycled with G.
var gravityPresets = [][2]float64{{0, 3}, {0, -3}, {3, 0}, {0, 0}}

type Game struct {
	frames int

	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	overlay   *system.DebugOverlay

	levelName string
	savePath  string
	gravityAt int
	log       *logrus.Entry
}

func NewGame(levelName string, cfg physics.Config, watcher *levels.Watcher, savePath string) *Game {
	lifecycle := physics.NewLifecycle(cfg)
	ps := system.NewPhysicsSystem(lifecycle)

	g := &Game{
		world: ecs.NewWorld(),
		scheduler: ecs.NewScheduler(
			system.NewLevelSystem(watcher),
			system.NewScriptSystem(lifecycle),
			system.NewMovementSystem(),
			ps,
		),
		physics:   ps,
		overlay:   system.NewDebugOverlay(),
		levelName: levelName,
		savePath:  savePath,
		log:       logger.For("game"),
	}
	g.requestLevel(levelName)
	return g
}

func (g *Game) Update() error {
	g.frames++
	g.handleKeys()
	g.scheduler.Update(g.world)
	return nil
}

func (g *Game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.overlay.Enabled = !g.overlay.Enabled
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.gravityAt = (g.gravityAt + 1) % len(gravityPresets)
		p := gravityPresets[g.gravityAt]
		e := ecs.CreateEntity(g.world)
		_ = ecs.Add(g.world, e, component.GravityRequestComponent.Kind(), &component.GravityRequest{X: p[0], Y: p[1]})
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		e := ecs.CreateEntity(g.world)
		_ = ecs.Add(g.world, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{})
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.requestLevel(g.nextLevel())
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.save()
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		g.load()
	}
}

func (g *Game) requestLevel(name string) {
	g.levelName = name
	e := ecs.CreateEntity(g.world)
	_ = ecs.Add(g.world, e, component.LevelChangeRequestComponent.Kind(), &component.LevelChangeRequest{TargetLevel: name})
}

func (g *Game) nextLevel() string {
	names := levels.Names()
	if len(names) == 0 {
		return g.levelName
	}
	i := slices.Index(names, g.levelName)
	return names[(i+1)%len(names)]
}

func (g *Game) save() {
	data, err := save.Encode(save.Snapshot(g.world, g.levelName))
	if err == nil {
		err = os.WriteFile(g.savePath, data, 0o644)
	}
	if err != nil {
		g.log.WithError(err).Error("game: save failed")
		return
	}
	g.log.WithField("path", g.savePath).Info("game: saved")
}

func (g *Game) load() {
	data, err := os.ReadFile(g.savePath)
	if err != nil {
		g.log.WithError(err).Warn("game: no save to load")
		return
	}
	state, err := save.Decode(data)
	if err == nil {
		err = save.Restore(g.world, state, nil)
	}
	if err != nil {
		g.log.WithError(err).Error("game: load failed")
		return
	}
	g.levelName = state.Level
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)

	g.overlay.Draw(g.world, g.physics.World(), screen)
	g.drawMarkers(screen)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s    FPS: %.2f", g.levelName, ebiten.ActualFPS()), 10, baseHeight-20)
}

// drawMarkers puts a dot where each bodied entity's sprite is anchored.
// Sprites sit half a tile right of and one tile below the body.
func (g *Game) drawMarkers(screen *ebiten.Image) {
	ecs.ForEach2(g.world, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.PhysicsBody, t *component.Transform) {
		x := t.X + common.TileSize/2
		y := t.Y + common.TileSize
		ebitenutil.DrawRect(screen, x-markerSize/2, y-markerSize/2, markerSize, markerSize, colornames.White)
	})
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
