package aspen

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	curvePlotSize  = 180.0
	curvePad       = 10.0
	curveButtonH   = 18.0
	curveButtonGap = 4.0
	curveSideW     = 64.0
	curveHandleR   = 5.0
	curveGrabR     = 9.0
	curveReadoutH  = 30.0

	// Curve Y may overshoot its [0,1] plot band; the plot reserves
	// headroom so overshoot handles stay visible and draggable.
	curveOvershoot = 0.5

	// CurveSlotCount is the number of savable curve slots.
	CurveSlotCount = 4
)

var colorSaveArm = Color{0.95, 0.60, 0.20, 1}

// PresetSlot is one savable curve slot. Slots persist for the process
// lifetime (and across runs through the settings store), are filled only
// by explicit user action, and are never evicted.
type PresetSlot struct {
	Curve  VelocityCurve
	Filled bool
}

// CurveContent is the velocity curve editor: a plot with two draggable
// control handles, preset buttons, savable slots with a save-arm toggle,
// and a live easing readout. Shown with focus; Enter applies.
type CurveContent struct {
	curve  VelocityCurve
	preset PresetKind
	slots  *[CurveSlotCount]PresetSlot
	sample EasingSample // host keyframe context for the readout
	saving bool

	// OnSlotsChanged is called after a slot is saved, so the caller can
	// persist the slot table.
	OnSlotsChanged func()

	w, h float64
}

// NewCurveContent builds the editor around a process-wide slot table.
// A nil slots pointer gets a private empty table.
func NewCurveContent(slots *[CurveSlotCount]PresetSlot) *CurveContent {
	if slots == nil {
		slots = new([CurveSlotCount]PresetSlot)
	}
	c := &CurveContent{
		curve:  linearCurve(),
		preset: PresetLinear,
		slots:  slots,
		sample: EasingSample{AvgSpeed: 1},
	}
	c.w = curvePad + curvePlotSize + curvePad + curveSideW + curvePad
	c.h = curvePad + curvePlotSize + curvePad + curveReadoutH + curvePad
	return c
}

// SetSample provides the keyframe pair context. The editor seeds its curve
// from the sample and reports speeds against its average speed.
func (c *CurveContent) SetSample(s EasingSample) {
	c.sample = s
	curve, err := CurveFromEase(s)
	c.curve = curve
	if err != nil {
		c.preset = PresetLinear
		return
	}
	c.preset = matchPreset(curve)
}

// Curve returns the curve being edited.
func (c *CurveContent) Curve() VelocityCurve {
	return c.curve
}

// Preset returns the current preset marker.
func (c *CurveContent) Preset() PresetKind {
	return c.preset
}

// matchPreset finds the preset a curve corresponds to, or PresetCustom.
func matchPreset(curve VelocityCurve) PresetKind {
	near := func(a, b Vec2) bool {
		const tol = 1e-6
		dx, dy := a.X-b.X, a.Y-b.Y
		return dx < tol && dx > -tol && dy < tol && dy > -tol
	}
	for kind := PresetLinear; kind < PresetCustom; kind++ {
		p := presetCurves[kind]
		if near(curve.P0, p.P0) && near(curve.P1, p.P1) {
			return kind
		}
	}
	return PresetCustom
}

func (c *CurveContent) Reset() {
	c.saving = false
}

func (c *CurveContent) Size() (w, h float64) {
	return c.w, c.h
}

func (c *CurveContent) plotRect() Rect {
	return Rect{X: curvePad, Y: curvePad, Width: curvePlotSize, Height: curvePlotSize}
}

// toPlot maps normalized curve space to plot pixels. Y grows upward in
// curve space and downward on screen; the overshoot band pads both ends.
func (c *CurveContent) toPlot(p Vec2) Vec2 {
	r := c.plotRect()
	span := 1 + 2*curveOvershoot
	return Vec2{
		X: r.X + p.X*r.Width,
		Y: r.Y + (1+curveOvershoot-p.Y)/span*r.Height,
	}
}

// fromPlot inverts toPlot, clamping to the legal curve ranges.
func (c *CurveContent) fromPlot(p Vec2) Vec2 {
	r := c.plotRect()
	span := 1 + 2*curveOvershoot
	return Vec2{
		X: clamp((p.X-r.X)/r.Width, 0, 1),
		Y: clamp(1+curveOvershoot-(p.Y-r.Y)/r.Height*span, curveYMin, curveYMax),
	}
}

// Option indices: presets 0..4, then save-arm, then slots.
func (c *CurveContent) saveIndex() int     { return int(PresetCustom) }
func (c *CurveContent) slotIndex(i int) int { return int(PresetCustom) + 1 + i }

func (c *CurveContent) sideRect(row int) Rect {
	return Rect{
		X:      curvePad + curvePlotSize + curvePad,
		Y:      curvePad + float64(row)*(curveButtonH+curveButtonGap),
		Width:  curveSideW,
		Height: curveButtonH,
	}
}

func (c *CurveContent) optionRect(i int) Rect {
	switch {
	case i >= 0 && i < int(PresetCustom):
		return c.sideRect(i)
	case i == c.saveIndex():
		return c.sideRect(int(PresetCustom))
	case i > c.saveIndex() && i <= c.saveIndex()+CurveSlotCount:
		return c.sideRect(int(PresetCustom) + 1 + (i - c.saveIndex() - 1))
	}
	return Rect{}
}

func (c *CurveContent) optionCount() int {
	return int(PresetCustom) + 1 + CurveSlotCount
}

func (c *CurveContent) HitTest(p Vec2) int {
	for i := 0; i < c.optionCount(); i++ {
		if c.optionRect(i).Contains(p.X, p.Y) {
			return i
		}
	}
	return noOption
}

func (c *CurveContent) Activate(i int) (Effect, Payload) {
	switch {
	case i >= 0 && i < int(PresetCustom):
		c.curve = PresetCurve(PresetKind(i))
		c.preset = PresetKind(i)
		c.saving = false
		return EffectNone, nil

	case i == c.saveIndex():
		c.saving = !c.saving
		return EffectNone, nil

	case i > c.saveIndex() && i <= c.saveIndex()+CurveSlotCount:
		slot := i - c.saveIndex() - 1
		if c.saving {
			c.slots[slot] = PresetSlot{Curve: c.curve, Filled: true}
			c.saving = false
			if c.OnSlotsChanged != nil {
				c.OnSlotsChanged()
			}
			return EffectNone, nil
		}
		if !c.slots[slot].Filled {
			return EffectNone, nil
		}
		c.curve = c.slots[slot].Curve.Clamp()
		c.preset = matchPreset(c.curve)
		return EffectNone, nil
	}
	return EffectNone, nil
}

func (c *CurveContent) KeyOption(r rune) int {
	switch r {
	case 'l':
		return int(PresetLinear)
	case 'i':
		return int(PresetEaseIn)
	case 'o':
		return int(PresetEaseOut)
	case 'e':
		return int(PresetEaseInOut)
	case 's':
		return c.saveIndex()
	}
	return noOption
}

// HandleKey applies the edited curve on Enter.
func (c *CurveContent) HandleKey(ev KeyEvent) (bool, Payload) {
	if ev.Key != KeyEnter {
		return false, nil
	}
	curve := c.curve.Clamp()
	return true, CurveData{
		Curve:  curve,
		Preset: c.preset,
		Ease:   EaseFromCurve(curve, c.sample.AvgSpeed),
	}
}

// DragStart grabs a control handle when the press lands within reach.
func (c *CurveContent) DragStart(p Vec2) (int, bool) {
	for i, cp := range [2]Vec2{c.curve.P0, c.curve.P1} {
		hp := c.toPlot(cp)
		dx, dy := p.X-hp.X, p.Y-hp.Y
		if dx*dx+dy*dy <= curveGrabR*curveGrabR {
			return i, true
		}
	}
	return 0, false
}

// DragMove moves a handle and marks the curve custom.
func (c *CurveContent) DragMove(handle int, p Vec2) {
	np := c.fromPlot(p)
	if handle == 0 {
		c.curve.P0 = np
	} else {
		c.curve.P1 = np
	}
	c.curve = c.curve.Clamp()
	c.preset = PresetCustom
	c.saving = false
}

func (c *CurveContent) Draw(dst *ebiten.Image, st *OverlayState) {
	fillRect(dst, Rect{Width: c.w, Height: c.h}, colorPanel)
	strokeRect(dst, Rect{Width: c.w, Height: c.h}, colorBorder)

	c.drawPlot(dst)
	c.drawSide(dst, st)
	c.drawReadout(dst)
}

func (c *CurveContent) drawPlot(dst *ebiten.Image) {
	r := c.plotRect()
	fillRect(dst, r, colorCell)

	// Unit band guides at y=0 and y=1.
	for _, y := range [2]float64{0, 1} {
		g := c.toPlot(Vec2{0, y})
		fillLine(dst, Vec2{r.X, g.Y}, Vec2{r.X + r.Width, g.Y}, 1, colorBorder)
	}

	// Polyline through the bezier.
	const steps = 48
	prev := c.toPlot(Vec2{0, 0})
	for i := 1; i <= steps; i++ {
		pt := c.toPlot(c.curve.Eval(float64(i) / steps))
		fillLine(dst, prev, pt, 2, colorAccent)
		prev = pt
	}

	// Handle stems then knobs.
	start := c.toPlot(Vec2{0, 0})
	end := c.toPlot(Vec2{1, 1})
	h0 := c.toPlot(c.curve.P0)
	h1 := c.toPlot(c.curve.P1)
	fillLine(dst, start, h0, 1, colorTextDim)
	fillLine(dst, end, h1, 1, colorTextDim)
	for _, hp := range [2]Vec2{h0, h1} {
		knob := Rect{
			X:      hp.X - curveHandleR,
			Y:      hp.Y - curveHandleR,
			Width:  curveHandleR * 2,
			Height: curveHandleR * 2,
		}
		fillRect(dst, knob, colorText)
	}
}

func (c *CurveContent) drawSide(dst *ebiten.Image, st *OverlayState) {
	labels := [...]string{"Linear", "In", "Out", "In-Out", "Out-In"}
	for i, label := range labels {
		r := c.optionRect(i)
		bg := colorCell
		if st.Hover == i {
			bg = colorHover
		}
		fillRect(dst, r, bg)
		if c.preset == PresetKind(i) {
			strokeRect(dst, r, colorAccent)
		}
		drawLabel(dst, label, r.X+6, r.Y+3, colorText)
	}

	sr := c.optionRect(c.saveIndex())
	bg := colorCell
	if st.Hover == c.saveIndex() {
		bg = colorHover
	}
	fillRect(dst, sr, bg)
	if c.saving {
		strokeRect(dst, sr, colorSaveArm)
	}
	sc := colorTextDim
	if c.saving {
		sc = colorSaveArm
	}
	drawLabel(dst, "Save", sr.X+6, sr.Y+3, sc)

	for i := 0; i < CurveSlotCount; i++ {
		idx := c.slotIndex(i)
		r := c.optionRect(idx)
		bg := colorCell
		if st.Hover == idx {
			bg = colorHover
		}
		fillRect(dst, r, bg)
		if c.saving {
			strokeRect(dst, r, colorSaveArm)
		}
		lc := colorTextDim
		if c.slots[i].Filled {
			lc = colorText
		}
		drawLabel(dst, fmt.Sprintf("Slot %d", i+1), r.X+6, r.Y+3, lc)
	}
}

// drawReadout shows the host-space ease values for the current curve and
// the velocity integral as a normalization diagnostic (0.5 when sound).
func (c *CurveContent) drawReadout(dst *ebiten.Image) {
	y := curvePad + curvePlotSize + curvePad
	ease := EaseFromCurve(c.curve, c.sample.AvgSpeed)
	line1 := fmt.Sprintf("out %.1f / %.1f%%  in %.1f / %.1f%%",
		ease.OutSpeed, ease.OutInfluence, ease.InSpeed, ease.InInfluence)
	line2 := fmt.Sprintf("%s  integral %.3f", c.preset.String(), IntegrateVelocity(c.curve, 1))
	drawLabel(dst, line1, curvePad, y, colorText)
	drawLabel(dst, line2, curvePad, y+labelLineHeight+2, colorTextDim)
}
