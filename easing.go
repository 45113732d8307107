package aspen

import (
	"errors"
	"math"
)

// ErrDegenerateCurve reports an easing conversion with no value change to
// normalize against. The conversion recovers by returning the linear
// diagonal curve; the error is informational only.
var ErrDegenerateCurve = errors.New("aspen: degenerate curve input")

const (
	// speedEpsilon is the |avgSpeed| below which a keyframe pair is treated
	// as having no value change.
	speedEpsilon = 1e-9

	// influenceMin and influenceMax bound the host's influence percentage.
	influenceMin = 0.1
	influenceMax = 100.0

	// curveYMin and curveYMax bound control point Y so overshoot stays
	// renderable.
	curveYMin = -0.5
	curveYMax = 1.5
)

// VelocityCurve is a normalized cubic bezier velocity curve over one
// keyframe interval. The implied endpoints are (0,0) and (1,1); P0 and P1
// are the two free control points. X is always in [0,1]; Y may extend to
// [-0.5, 1.5] to permit overshoot.
type VelocityCurve struct {
	P0, P1 Vec2
}

// EasingSample is the host's native two-sided temporal-ease description for
// one keyframe pair. AvgSpeed is |valueChange| / duration for the pair.
type EasingSample struct {
	OutSpeed     float64
	OutInfluence float64
	InSpeed      float64
	InInfluence  float64
	AvgSpeed     float64
}

// PresetKind names the fixed curve presets plus the synthetic "custom"
// state marking any curve produced by drag or loaded from a slot.
type PresetKind uint8

const (
	PresetLinear PresetKind = iota
	PresetEaseIn
	PresetEaseOut
	PresetEaseInOut
	PresetEaseOutIn
	PresetCustom
)

// String returns the preset's display label.
func (p PresetKind) String() string {
	switch p {
	case PresetLinear:
		return "Linear"
	case PresetEaseIn:
		return "Ease In"
	case PresetEaseOut:
		return "Ease Out"
	case PresetEaseInOut:
		return "In-Out"
	case PresetEaseOutIn:
		return "Out-In"
	default:
		return "Custom"
	}
}

// presetCurves are the fixed control points for each named preset.
var presetCurves = [...]VelocityCurve{
	PresetLinear:    {P0: Vec2{0.25, 0.25}, P1: Vec2{0.75, 0.75}},
	PresetEaseIn:    {P0: Vec2{0.42, 0.0}, P1: Vec2{1.0, 1.0}},
	PresetEaseOut:   {P0: Vec2{0.0, 0.0}, P1: Vec2{0.58, 1.0}},
	PresetEaseInOut: {P0: Vec2{0.42, 0.0}, P1: Vec2{0.58, 1.0}},
	PresetEaseOutIn: {P0: Vec2{0.0, 1.0}, P1: Vec2{1.0, 0.0}},
}

// PresetCurve returns the control points for a named preset. PresetCustom
// (or any out-of-range kind) returns the linear diagonal.
func PresetCurve(kind PresetKind) VelocityCurve {
	if int(kind) < len(presetCurves) {
		return presetCurves[kind]
	}
	return presetCurves[PresetLinear]
}

// linearCurve is the diagonal returned for degenerate conversions.
func linearCurve() VelocityCurve {
	return presetCurves[PresetLinear]
}

// Clamp bounds the curve's control points to their legal ranges: X to
// [0, 1], Y to [-0.5, 1.5]. Always applied before a curve is drawn or
// converted.
func (c VelocityCurve) Clamp() VelocityCurve {
	return VelocityCurve{
		P0: Vec2{clamp(c.P0.X, 0, 1), clamp(c.P0.Y, curveYMin, curveYMax)},
		P1: Vec2{clamp(c.P1.X, 0, 1), clamp(c.P1.Y, curveYMin, curveYMax)},
	}
}

// CurveFromEase converts the host's speed/influence easing into a
// normalized velocity curve. With no value change to normalize against
// (|AvgSpeed| below epsilon) it returns the linear diagonal and
// ErrDegenerateCurve.
func CurveFromEase(s EasingSample) (VelocityCurve, error) {
	if math.Abs(s.AvgSpeed) < speedEpsilon {
		return linearCurve(), ErrDegenerateCurve
	}

	outInf := clamp(s.OutInfluence, influenceMin, influenceMax)
	inInf := clamp(s.InInfluence, influenceMin, influenceMax)

	var c VelocityCurve
	c.P0.X = outInf / 100
	c.P0.Y = c.P0.X * s.OutSpeed / s.AvgSpeed
	c.P1.X = 1 - inInf/100
	c.P1.Y = 1 - (1-c.P1.X)*s.InSpeed/s.AvgSpeed

	c.P0.Y = clamp(c.P0.Y, curveYMin, curveYMax)
	c.P1.Y = clamp(c.P1.Y, curveYMin, curveYMax)
	return c, nil
}

// EaseFromCurve converts a velocity curve back into the host's
// speed/influence representation, scaled by avgSpeed. Control points at the
// interval edges (X at 0 or 1) fall back to the linear 1:1 speed ratio.
func EaseFromCurve(c VelocityCurve, avgSpeed float64) EasingSample {
	c = c.Clamp()

	outInf := clamp(c.P0.X*100, influenceMin, influenceMax)
	inInf := clamp((1-c.P1.X)*100, influenceMin, influenceMax)

	outRatio := 1.0
	if math.Abs(c.P0.X) > speedEpsilon {
		outRatio = c.P0.Y / c.P0.X
	}
	inRatio := 1.0
	if math.Abs(1-c.P1.X) > speedEpsilon {
		inRatio = (1 - c.P1.Y) / (1 - c.P1.X)
	}

	return EasingSample{
		OutSpeed:     outRatio * avgSpeed,
		OutInfluence: outInf,
		InSpeed:      inRatio * avgSpeed,
		InInfluence:  inInf,
		AvgSpeed:     avgSpeed,
	}
}

// evalCubicBezier evaluates a cubic bezier with the four given control
// points at parameter t.
func evalCubicBezier(t float64, p0, p1, p2, p3 Vec2) Vec2 {
	u := 1 - t
	uu := u * u
	tt := t * t
	uuu := uu * u
	ttt := tt * t

	return Vec2{
		X: uuu*p0.X + 3*uu*t*p1.X + 3*u*tt*p2.X + ttt*p3.X,
		Y: uuu*p0.Y + 3*uu*t*p1.Y + 3*u*tt*p2.Y + ttt*p3.Y,
	}
}

// Eval samples the velocity curve in value space at parameter t, with the
// endpoints pinned to (0,0) and (1,1).
func (c VelocityCurve) Eval(t float64) Vec2 {
	return evalCubicBezier(t, Vec2{0, 0}, c.P0, c.P1, Vec2{1, 1})
}

// IntegrateVelocity numerically integrates the curve's Y over the bezier
// parameter using Simpson's rule with 100 sub-intervals, from 0 to upTo.
// A correctly normalized curve over the full interval integrates to ≈ 0.5
// (the mean of a curve running from 0 to 1). Diagnostic only; never used
// for control flow.
func IntegrateVelocity(c VelocityCurve, upTo float64) float64 {
	const n = 100
	h := upTo / n

	sum := 0.0
	for i := 0; i <= n; i++ {
		v := c.Eval(float64(i) * h).Y
		switch {
		case i == 0 || i == n:
			sum += v
		case i%2 == 0:
			sum += 2 * v
		default:
			sum += 4 * v
		}
	}
	return h / 3 * sum
}
