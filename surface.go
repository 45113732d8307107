package aspen

import (
	"errors"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ErrSurfaceUnavailable reports that the drawing backend could not produce
// a canvas. The surface degrades: Show becomes a permanent no-op for the
// process lifetime and the overlay is simply absent.
var ErrSurfaceUnavailable = errors.New("aspen: surface unavailable")

// showFadeDuration is the alpha fade applied when a surface appears.
const showFadeDuration = 0.12 // seconds

// Monitors resolves the usable work area of the monitor nearest a point.
// The host supplies a real implementation; SingleMonitor suffices for one
// display or for tests.
type Monitors interface {
	WorkArea(p Vec2) Rect
}

// SingleMonitor is a Monitors implementation with one fixed work area.
type SingleMonitor struct {
	Area Rect
}

// WorkArea returns the fixed area regardless of the point.
func (m SingleMonitor) WorkArea(Vec2) Rect {
	return m.Area
}

// Surface is an owned, hidden-by-default overlay canvas. All content
// geometry is defined once in unscaled units; the scale factor set by
// Position applies to both drawing and hit testing.
type Surface struct {
	baseW, baseH float64
	monitors     Monitors

	canvas  *ebiten.Image
	rect    Rect // screen rectangle after clamping
	scale   float64
	visible bool
	created bool
	failed  bool
	dirty   bool

	takesFocus bool

	alpha float64
	fade  *gween.Tween

	// newCanvas is swappable so tests can exercise backend failure.
	newCanvas func(w, h int) *ebiten.Image
}

// NewSurface creates a surface for content of the given unscaled size.
// The canvas itself is allocated lazily by Create.
func NewSurface(w, h float64, monitors Monitors) *Surface {
	return &Surface{
		baseW:    w,
		baseH:    h,
		monitors: monitors,
		scale:    1,
		newCanvas: func(w, h int) *ebiten.Image {
			return ebiten.NewImage(w, h)
		},
	}
}

// SetBaseSize changes the unscaled content size. Contents with variable
// layouts call this before Position; the canvas is reallocated when the
// size actually changed.
func (s *Surface) SetBaseSize(w, h float64) {
	if w == s.baseW && h == s.baseH {
		return
	}
	s.baseW = w
	s.baseH = h
	if s.created {
		s.canvas.Deallocate()
		s.canvas = s.newCanvas(int(w), int(h))
		s.dirty = true
	}
}

// Create allocates the backing canvas. Idempotent: a second call is a
// no-op. Returns ErrSurfaceUnavailable if the backend cannot produce a
// canvas, after which Show never displays anything.
func (s *Surface) Create() error {
	if s.created {
		return nil
	}
	if s.failed {
		return ErrSurfaceUnavailable
	}
	c := s.newCanvas(int(s.baseW), int(s.baseH))
	if c == nil {
		s.failed = true
		return ErrSurfaceUnavailable
	}
	s.canvas = c
	s.created = true
	return nil
}

// Destroy releases the canvas. The surface can be re-created afterwards
// unless it previously failed.
func (s *Surface) Destroy() {
	if s.canvas != nil {
		s.canvas.Deallocate()
		s.canvas = nil
	}
	s.created = false
	s.visible = false
}

// Position computes the screen rectangle centered on point, scaled by
// scale, and clamped to the work area of the monitor nearest point.
// takeFocus records whether the overlay intercepts keyboard input; the
// host reads it via TakesFocus when showing the window.
func (s *Surface) Position(point Vec2, scale float64, takeFocus bool) {
	if scale <= 0 {
		scale = 1
	}
	s.scale = scale
	s.takesFocus = takeFocus

	w := s.baseW * scale
	h := s.baseH * scale
	x := point.X - w/2
	y := point.Y - h/2

	work := s.monitors.WorkArea(point)
	if x < work.X {
		x = work.X
	}
	if y < work.Y {
		y = work.Y
	}
	if x+w > work.X+work.Width {
		x = work.X + work.Width - w
	}
	if y+h > work.Y+work.Height {
		y = work.Y + work.Height - h
	}

	s.rect = Rect{X: x, Y: y, Width: w, Height: h}
}

// Show makes the surface visible and starts the fade-in. A failed surface
// stays hidden.
func (s *Surface) Show() {
	if s.failed || !s.created {
		return
	}
	s.visible = true
	s.dirty = true
	s.alpha = 0
	s.fade = gween.New(0, 1, showFadeDuration, ease.OutQuad)
}

// Hide removes the surface from screen. The canvas is kept for reuse.
func (s *Surface) Hide() {
	s.visible = false
	s.fade = nil
}

// Visible reports whether the surface is currently shown.
func (s *Surface) Visible() bool {
	return s.visible
}

// TakesFocus reports whether the last Position call requested keyboard
// focus.
func (s *Surface) TakesFocus() bool {
	return s.takesFocus
}

// Rect returns the screen rectangle computed by the last Position call.
func (s *Surface) Rect() Rect {
	return s.rect
}

// Scale returns the scale factor set by the last Position call.
func (s *Surface) Scale() float64 {
	return s.scale
}

// RequestRedraw marks the canvas stale so the next Draw re-renders it.
func (s *Surface) RequestRedraw() {
	s.dirty = true
}

// ToLocal converts a screen point to unscaled content coordinates, the
// space all layout and hit tables are defined in.
func (s *Surface) ToLocal(p Vec2) Vec2 {
	return Vec2{
		X: (p.X - s.rect.X) / s.scale,
		Y: (p.Y - s.rect.Y) / s.scale,
	}
}

// ContainsScreen reports whether a screen point falls inside the surface
// rectangle.
func (s *Surface) ContainsScreen(p Vec2) bool {
	return s.visible && s.rect.Contains(p.X, p.Y)
}

// StepFade advances the fade-in by dt seconds.
func (s *Surface) StepFade(dt float64) {
	if s.fade == nil {
		return
	}
	v, done := s.fade.Update(float32(dt))
	s.alpha = float64(v)
	if done {
		s.fade = nil
	}
}

// Draw renders the surface to screen. render is invoked against the
// unscaled canvas only when a redraw is pending; the cached canvas is then
// composited at the scaled screen rectangle.
func (s *Surface) Draw(screen *ebiten.Image, render func(dst *ebiten.Image)) {
	if !s.visible || s.canvas == nil {
		return
	}
	if s.dirty {
		s.canvas.Clear()
		render(s.canvas)
		s.dirty = false
	}

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(s.scale, s.scale)
	op.GeoM.Translate(s.rect.X, s.rect.Y)
	op.ColorScale.ScaleAlpha(float32(s.alpha))
	screen.DrawImage(s.canvas, &op)
}

// fillRect draws a solid rectangle in canvas coordinates, the way solid
// color sprites are drawn from WhitePixel.
func fillRect(dst *ebiten.Image, r Rect, c Color) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(r.Width, r.Height)
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.Scale(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	dst.DrawImage(WhitePixel, &op)
}

// strokeRect draws a 1px rectangle outline in canvas coordinates.
func strokeRect(dst *ebiten.Image, r Rect, c Color) {
	fillRect(dst, Rect{r.X, r.Y, r.Width, 1}, c)
	fillRect(dst, Rect{r.X, r.Y + r.Height - 1, r.Width, 1}, c)
	fillRect(dst, Rect{r.X, r.Y, 1, r.Height}, c)
	fillRect(dst, Rect{r.X + r.Width - 1, r.Y, 1, r.Height}, c)
}

// fillLine draws a thin line segment as a rotated rectangle.
func fillLine(dst *ebiten.Image, a, b Vec2, width float64, c Color) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(length, width)
	op.GeoM.Translate(0, -width/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(a.X, a.Y)
	op.ColorScale.Scale(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	dst.DrawImage(WhitePixel, &op)
}
