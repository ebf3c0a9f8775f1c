package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/tilephysics/common"
	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
	"github.com/milk9111/tilephysics/levels"
	"github.com/milk9111/tilephysics/mesh"
	"github.com/milk9111/tilephysics/physics"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

var (
	debugStaticColor = colornames.Limegreen
	debugBodyColor   = colornames.Deepskyblue
	debugSensorColor = colornames.Gold
	debugStripColor  = colornames.Orchid
	debugPointColor  = colornames.Crimson
)

// DebugOverlay draws collision shapes, half-blocked edge strips and the
// current gravity on top of the game.
type DebugOverlay struct {
	Enabled bool

	gravityText string
	gravityX    float64
	gravityY    float64

	stripsFor string
	strips    []mesh.Rect
}

func NewDebugOverlay() *DebugOverlay {
	return &DebugOverlay{Enabled: true}
}

func (o *DebugOverlay) Draw(w *ecs.World, world *physics.World, screen *ebiten.Image) {
	if o == nil || !o.Enabled || world == nil || screen == nil {
		return
	}

	drawer := &physicsDebugDrawer{screen: screen, zoom: common.PixelsPerUnit}
	cp.DrawSpace(world.Space(), drawer)

	if levelEnt, ok := ecs.First(w, component.LevelComponent.Kind()); ok {
		if level, _ := ecs.Get(w, levelEnt, component.LevelComponent.Kind()); level.Data != nil {
			o.drawStrips(screen, level.Data)
		}
	}

	gx, gy := world.Gravity()
	if o.gravityText == "" || gx != o.gravityX || gy != o.gravityY {
		o.gravityX, o.gravityY = gx, gy
		o.gravityText = GravityLabel(gx, gy)
	}
	ebitenutil.DebugPrintAt(screen, o.gravityText, 10, 10)
}

// GravityLabel formats gravity the way the overlay shows it.
func GravityLabel(x, y float64) string {
	return fmt.Sprintf("Gravity: %.1f, %.1f", x, y)
}

func (o *DebugOverlay) drawStrips(screen *ebiten.Image, level *levels.Level) {
	if id := level.ID(); o.stripsFor != id {
		m := mesh.Build(level)
		o.strips = o.strips[:0]
		for _, group := range [][]mesh.Rect{m.Tops, m.Bottoms, m.Lefts, m.Rights} {
			o.strips = append(o.strips, group...)
		}
		o.stripsFor = id
	}
	for _, r := range o.strips {
		x, y := common.TileToPixel(float64(r.X)), common.TileToPixel(float64(r.Y))
		w, h := common.TileToPixel(float64(r.W)), common.TileToPixel(float64(r.H))
		ebitenutil.DrawRect(screen, x, y, w, h, withAlpha(debugStripColor, 0x60))
	}
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	zoom   float64
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], fill)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2 / d.zoom
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return toFColor(debugStaticColor)
}

// ShapeColor tells level geometry, entity bodies and sensors apart.
func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape.Sensor() {
		return toFColor(debugSensorColor)
	}
	if b, ok := shape.UserData.(*physics.Body); ok {
		if id, _ := b.ID(); id == physics.StaticID {
			return toFColor(debugStaticColor)
		}
	}
	return toFColor(debugBodyColor)
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return toFColor(colornames.Orange)
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return toFColor(debugPointColor)
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, color cp.FColor) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	ebitenutil.DrawLine(d.screen, x1, y1, x2, y2, toNRGBA(color))
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, color cp.FColor) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], color)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, color cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, color)
}

// toScreen maps simulation units to screen pixels.
func (d *physicsDebugDrawer) toScreen(v cp.Vector) (float64, float64) {
	return v.X * d.zoom, v.Y * d.zoom
}

func toFColor(c color.RGBA) cp.FColor {
	return cp.FColor{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: float32(c.A) / 255}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
