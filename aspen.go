package aspen

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is submitted to ebiten.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// WhitePixel is a 1x1 white image used to draw solid color rectangles.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and ratios
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Phase is the lifecycle phase of an overlay.
type Phase uint8

const (
	PhaseHidden  Phase = iota // not on screen, no pending result
	PhaseShown                // on screen, accepting input
	PhaseClosing              // result decided, surface about to hide
)

// Mode selects how an overlay commits a selection.
type Mode uint8

const (
	ModeHold  Mode = iota // commit the hovered option on primary-button release
	ModeClick             // commit immediately on primary-button press
)

// OverlayKind identifies one of the supported overlay shapes.
type OverlayKind uint8

const (
	KindGrid        OverlayKind = iota // anchor ratio grid
	KindMenu                           // quick menu of labelled actions
	KindActionPanel                    // per-category action list with search
	KindCurveEditor                    // velocity curve editor
)

// String returns the settings key for the overlay kind.
func (k OverlayKind) String() string {
	switch k {
	case KindGrid:
		return "grid"
	case KindMenu:
		return "menu"
	case KindActionPanel:
		return "actions"
	case KindCurveEditor:
		return "curve"
	default:
		return "unknown"
	}
}

// Key identifies a non-printable key delivered to an overlay.
// Printable keys travel as the Rune field of a KeyEvent instead.
type Key uint8

const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
)

// KeyEvent is one keyboard event delivered to a shown overlay.
// Exactly one of Key and Rune is meaningful: Key for control keys,
// Rune for printable input.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Ctrl  bool
	Shift bool
}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp(c.R, 0, 1) * 255),
		G: uint8(clamp(c.G, 0, 1) * 255),
		B: uint8(clamp(c.B, 0, 1) * 255),
		A: uint8(clamp(c.A, 0, 1) * 255),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
