package renderer

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/camera"
	"github.com/pthm-cable/sprout/plant"
	"github.com/pthm-cable/sprout/systems"
)

var (
	skyColor    = rl.Color{R: 196, G: 224, B: 242, A: 255}
	soilColor   = rl.Color{R: 104, G: 78, B: 56, A: 255}
	groundColor = rl.Color{R: 70, G: 52, B: 36, A: 255}
	stemColor   = rl.Color{R: 58, G: 120, B: 48, A: 255}
	rootColor   = rl.Color{R: 222, G: 204, B: 170, A: 255}
	leafColor   = rl.Color{R: 72, G: 160, B: 60, A: 230}
	leafEdge    = rl.Color{R: 40, G: 100, B: 36, A: 255}
)

// flowerColors maps palette tokens to draw colors. Unknown tokens draw magenta.
var flowerColors = map[string]rl.Color{
	"red":    {R: 220, G: 40, B: 50, A: 255},
	"pink":   {R: 245, G: 140, B: 180, A: 255},
	"orange": {R: 245, G: 150, B: 40, A: 255},
	"yellow": {R: 250, G: 220, B: 60, A: 255},
	"white":  {R: 250, G: 250, B: 245, A: 255},
	"purple": {R: 140, G: 70, B: 180, A: 255},
	"blue":   {R: 70, G: 110, B: 220, A: 255},
}

// FlowerColor returns the draw color for a palette token.
func FlowerColor(token string) rl.Color {
	if c, ok := flowerColors[strings.ToLower(token)]; ok {
		return c
	}
	return rl.Magenta
}

// PlantRenderer draws the domain and a plant snapshot through a camera.
type PlantRenderer struct {
	domain systems.Domain

	// Segment widths in pixels at zoom 1
	StemWidth float32
	RootWidth float32
}

// NewPlantRenderer creates a renderer for plants growing in domain.
func NewPlantRenderer(domain systems.Domain) *PlantRenderer {
	return &PlantRenderer{
		domain:    domain,
		StemWidth: 2.5,
		RootWidth: 1.5,
	}
}

// DrawDomain fills the sky and soil and draws the ground line.
func (r *PlantRenderer) DrawDomain(cam *camera.Camera) {
	d := r.domain
	r.fillRegion(cam, 0, 0, d.Width, d.Height, skyColor)
	r.fillRegion(cam, 0, -d.SoilDepth, d.Width, 0, soilColor)

	x0, y0 := cam.WorldToScreen(0, 0)
	x1, _ := cam.WorldToScreen(float32(d.Width), 0)
	rl.DrawLineEx(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y0}, 2, groundColor)
}

// fillRegion draws the domain rectangle [x0, x1] x [y0, y1] on screen.
func (r *PlantRenderer) fillRegion(cam *camera.Camera, x0, y0, x1, y1 float64, color rl.Color) {
	sx0, sy0 := cam.WorldToScreen(float32(x0), float32(y1))
	sx1, sy1 := cam.WorldToScreen(float32(x1), float32(y0))
	rl.DrawRectangleRec(rl.Rectangle{X: sx0, Y: sy0, Width: sx1 - sx0, Height: sy1 - sy0}, color)
}

// Draw renders roots, stems, leaves and flowers, in that order.
func (r *PlantRenderer) Draw(cam *camera.Camera, snap plant.PlantSnapshot) {
	zoomWidth := func(w float32) float32 {
		return max(1, w*cam.Zoom)
	}

	r.drawEdges(cam, snap.Roots, zoomWidth(r.RootWidth), rootColor)
	r.drawEdges(cam, snap.Shoots, zoomWidth(r.StemWidth), stemColor)

	scale := cam.Scale()
	for _, l := range snap.Leaves {
		if !cam.IsVisible(float32(l.Pos.X), float32(l.Pos.Y), float32(l.Size)) {
			continue
		}
		sx, sy := cam.WorldToScreen(float32(l.Pos.X), float32(l.Pos.Y))
		radius := max(1.5, float32(l.Size)*scale/2)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, leafColor)
		rl.DrawCircleLines(int32(sx), int32(sy), radius, leafEdge)
	}

	for _, f := range snap.Flowers {
		if !cam.IsVisible(float32(f.Pos.X), float32(f.Pos.Y), float32(f.Size)) {
			continue
		}
		sx, sy := cam.WorldToScreen(float32(f.Pos.X), float32(f.Pos.Y))
		radius := max(2, float32(f.Size)*scale/4)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, FlowerColor(f.Color))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius/3, rl.Gold)
	}
}

func (r *PlantRenderer) drawEdges(cam *camera.Camera, edges []plant.Edge, width float32, color rl.Color) {
	for _, e := range edges {
		fx, fy := cam.WorldToScreen(float32(e.From.X), float32(e.From.Y))
		tx, ty := cam.WorldToScreen(float32(e.To.X), float32(e.To.Y))
		rl.DrawLineEx(rl.Vector2{X: fx, Y: fy}, rl.Vector2{X: tx, Y: ty}, width, color)
	}
}
