// Package camera maps plant domain coordinates (y up, soil below zero) to
// screen pixels (y down) with pan and zoom.
package camera

// Camera controls the viewport into the domain.
type Camera struct {
	// Position is the camera center in domain coordinates
	X, Y float32

	// Zoom level (1.0 = whole domain fits the viewport)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Domain bounds; the camera center never leaves them
	MinX, MinY, MaxX, MaxY float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	// fit is pixels per domain unit at zoom 1
	fit float32
}

// fitMargin leaves a border around the domain at zoom 1.
const fitMargin = 0.95

// New creates a camera showing the whole domain, from x in [minX, maxX]
// and y in [minY, maxY].
func New(viewportW, viewportH, minX, minY, maxX, maxY float32) *Camera {
	c := &Camera{
		MinX:    minX,
		MinY:    minY,
		MaxX:    maxX,
		MaxY:    maxY,
		MinZoom: 0.5,
		MaxZoom: 12.0,
	}
	c.Resize(viewportW, viewportH)
	c.Reset()
	return c
}

// Scale returns the current pixels per domain unit.
func (c *Camera) Scale() float32 {
	return c.fit * c.Zoom
}

// WorldToScreen converts domain coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewportW/2 + (wx-c.X)*s
	sy = c.ViewportH/2 - (wy-c.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to domain coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := c.Scale()
	wx = c.X + (sx-c.ViewportW/2)/s
	wy = c.Y - (sy-c.ViewportH/2)/s
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX && wy+radius >= minY && wy-radius <= maxY
}

// Resize updates viewport dimensions and the fit scale.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	w, h := c.MaxX-c.MinX, c.MaxY-c.MinY
	if w <= 0 || h <= 0 {
		c.fit = 1
		return
	}
	c.fit = min(viewportW/w, viewportH/h) * fitMargin
}

// Pan moves the camera by the given delta in screen pixels, keeping the
// center inside the domain. Positive dy moves the view down the screen.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X = clamp(c.X+dx/s, c.MinX, c.MaxX)
	c.Y = clamp(c.Y-dy/s, c.MinY, c.MaxY)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the domain point under (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X = clamp(c.X+wx-nx, c.MinX, c.MaxX)
	c.Y = clamp(c.Y+wy-ny, c.MinY, c.MaxY)
}

// Reset centers the camera on the domain at zoom 1.
func (c *Camera) Reset() {
	c.X = (c.MinX + c.MaxX) / 2
	c.Y = (c.MinY + c.MaxY) / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the domain-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	s := c.Scale()
	halfW := c.ViewportW / (2 * s)
	halfH := c.ViewportH / (2 * s)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
