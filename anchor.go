package aspen

import (
	"errors"
	"math"
)

// ErrInvalidBounds reports a degenerate bounding box (zero or negative
// width/height). Callers treat it as a no-op, never as a fatal condition.
var ErrInvalidBounds = errors.New("aspen: invalid bounds")

// Bounds is a layer bounding box in the layer's local, unscaled,
// unrotated space.
type Bounds struct {
	Left, Top, Width, Height float64
}

// Valid reports whether the bounds span a positive area.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// SelectBounds picks the box the anchor grid operates on: the mask outline
// union when mask recognition is enabled and the mask box is non-degenerate,
// otherwise the content bounds.
func SelectBounds(content Bounds, mask *Bounds, useMask bool) Bounds {
	if useMask && mask != nil && mask.Valid() {
		return *mask
	}
	return content
}

// LayerTransform is the transform state of a host layer that anchor
// repositioning reads and writes. Anchor and Position are in the host's
// coordinate conventions; Rotation is in radians.
type LayerTransform struct {
	Anchor   Vec2
	Position Vec2
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

// Placement is the output of Reposition: the new pivot and the compensated
// position that keep the layer visually stationary.
type Placement struct {
	Anchor   Vec2
	Position Vec2
}

// Reposition moves a layer's anchor to the (rx, ry) ratio of bounds while
// compensating position so the rendered output does not shift. The ratio may
// lie outside [0, 1] to place the anchor beyond the box.
//
// The anchor delta is measured in local space, then rotated and scaled into
// the parent space the position lives in:
//
//	δ' = R(θ) · S(sx, sy) · (A1 - A0)
//	P1 = P0 + δ'
//
// Degenerate bounds return ErrInvalidBounds and the unchanged transform.
func Reposition(b Bounds, rx, ry float64, lt LayerTransform) (Placement, error) {
	if !b.Valid() {
		return Placement{Anchor: lt.Anchor, Position: lt.Position}, ErrInvalidBounds
	}

	a1 := Vec2{
		X: b.Left + b.Width*rx,
		Y: b.Top + b.Height*ry,
	}
	dx := a1.X - lt.Anchor.X
	dy := a1.Y - lt.Anchor.Y

	sin, cos := math.Sincos(lt.Rotation)
	sdx := dx * lt.ScaleX
	sdy := dy * lt.ScaleY
	rdx := sdx*cos - sdy*sin
	rdy := sdx*sin + sdy*cos

	return Placement{
		Anchor:   a1,
		Position: Vec2{X: lt.Position.X + rdx, Y: lt.Position.Y + rdy},
	}, nil
}

// CurrentRatio recovers the (rx, ry) ratio of the current anchor within
// bounds, clamped to [0, 1]. This is a display-only inverse used by the
// "copy current anchor" feature; it does not round-trip Reposition under
// rotation or scale, since live bounds may have changed.
func CurrentRatio(b Bounds, anchor Vec2) (Vec2, error) {
	if !b.Valid() {
		return Vec2{}, ErrInvalidBounds
	}
	return Vec2{
		X: clamp((anchor.X-b.Left)/b.Width, 0, 1),
		Y: clamp((anchor.Y-b.Top)/b.Height, 0, 1),
	}, nil
}

// ClampPasteRatio bounds a pasted anchor ratio to the creative overflow
// range [-0.2, 1.2]. Copy and paste deliberately use different ranges: copy
// shows a canonical in-box value, paste allows placing the anchor outside
// the box.
func ClampPasteRatio(r Vec2) Vec2 {
	return Vec2{
		X: clamp(r.X, -0.2, 1.2),
		Y: clamp(r.Y, -0.2, 1.2),
	}
}

// --- Affine helpers ---
//
// A 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// Used to simulate the host's render transform when verifying that
// repositioning leaves the rendered output fixed.

// identityAffine is the identity affine matrix.
var identityAffine = [6]float64{1, 0, 0, 1, 0, 0}

// renderTransform builds the layer-to-screen matrix the host applies:
// translate by -anchor, scale, rotate, then translate to position.
func renderTransform(lt LayerTransform) [6]float64 {
	sin, cos := math.Sincos(lt.Rotation)

	a := cos * lt.ScaleX
	b := sin * lt.ScaleX
	c := -sin * lt.ScaleY
	d := cos * lt.ScaleY

	tx := -(a*lt.Anchor.X + c*lt.Anchor.Y) + lt.Position.X
	ty := -(b*lt.Anchor.X + d*lt.Anchor.Y) + lt.Position.Y

	return [6]float64{a, b, c, d, tx, ty}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// RenderPoint maps a local-space point through the layer's render
// transform. Exposed for verification of the compensation identity.
func RenderPoint(lt LayerTransform, p Vec2) Vec2 {
	x, y := transformPoint(renderTransform(lt), p.X, p.Y)
	return Vec2{X: x, Y: y}
}
