package aspen

import (
	"math"
	"testing"
)

func TestCurveDragMarksCustom(t *testing.T) {
	c := NewCurveContent(nil)
	c.Reset()
	if c.Preset() != PresetLinear {
		t.Fatalf("fresh preset = %v, want linear", c.Preset())
	}

	// Grab handle 0 where it sits and drag it to normalized (0.1, 0.9).
	handle, ok := c.DragStart(c.toPlot(c.Curve().P0))
	if !ok || handle != 0 {
		t.Fatalf("DragStart = %d %v", handle, ok)
	}
	c.DragMove(0, c.toPlot(Vec2{X: 0.1, Y: 0.9}))

	if c.Preset() != PresetCustom {
		t.Fatalf("preset = %v, want custom after drag", c.Preset())
	}
	ease := EaseFromCurve(c.Curve(), 1)
	assertNearTol(t, "outInfluence", ease.OutInfluence, 10, 0.5)
}

func TestCurveDragClampsToLegalRange(t *testing.T) {
	c := NewCurveContent(nil)
	c.DragMove(1, Vec2{X: 1e6, Y: -1e6})
	curve := c.Curve()
	assertNear(t, "p1.x", curve.P1.X, 1)
	assertNear(t, "p1.y", curve.P1.Y, curveYMax) // plot Y inverts: far below = overshoot top
}

func TestCurvePresetButtons(t *testing.T) {
	c := NewCurveContent(nil)

	eff, _ := c.Activate(int(PresetEaseInOut))
	if eff != EffectNone {
		t.Fatalf("preset effect = %v, want stay open", eff)
	}
	if c.Preset() != PresetEaseInOut {
		t.Fatalf("preset = %v", c.Preset())
	}
	want := PresetCurve(PresetEaseInOut)
	assertVec2(t, "p0", c.Curve().P0, want.P0)
	assertVec2(t, "p1", c.Curve().P1, want.P1)
}

func TestCurveSaveWorkflow(t *testing.T) {
	var slots [CurveSlotCount]PresetSlot
	c := NewCurveContent(&slots)
	saved := 0
	c.OnSlotsChanged = func() { saved++ }

	// Empty slot without save mode: nothing happens.
	c.Activate(c.slotIndex(1))
	if slots[1].Filled {
		t.Fatal("empty slot filled without save mode")
	}

	c.DragMove(0, c.toPlot(Vec2{X: 0.3, Y: 0.8}))
	edited := c.Curve()

	c.Activate(c.saveIndex())
	if !c.saving {
		t.Fatal("save mode not armed")
	}
	c.Activate(c.slotIndex(1))
	if !slots[1].Filled {
		t.Fatal("slot not saved")
	}
	if c.saving {
		t.Fatal("save mode still armed after saving")
	}
	if saved != 1 {
		t.Fatalf("OnSlotsChanged fired %d times", saved)
	}
	assertVec2(t, "saved p0", slots[1].Curve.P0, edited.P0)

	// Loading the slot restores the curve.
	c.Activate(int(PresetLinear))
	c.Activate(c.slotIndex(1))
	assertVec2(t, "loaded p0", c.Curve().P0, edited.P0)
	if c.Preset() != PresetCustom {
		t.Fatalf("loaded preset = %v, want custom", c.Preset())
	}
}

func TestCurveSaveArmDisarmsOnToggle(t *testing.T) {
	c := NewCurveContent(nil)
	c.Activate(c.saveIndex())
	c.Activate(c.saveIndex())
	if c.saving {
		t.Fatal("second press did not disarm save mode")
	}

	c.Activate(c.saveIndex())
	c.Reset()
	if c.saving {
		t.Fatal("save mode survived a show cycle")
	}
}

func TestCurveEnterApplies(t *testing.T) {
	c := NewCurveContent(nil)
	c.SetSample(EasingSample{
		OutSpeed: 60, OutInfluence: 40, InSpeed: 120, InInfluence: 30, AvgSpeed: 120,
	})

	consumed, payload := c.HandleKey(KeyEvent{Key: KeyEnter})
	if !consumed || payload == nil {
		t.Fatalf("enter = %v %#v", consumed, payload)
	}
	data := payload.(CurveData)
	if math.Abs(data.Ease.OutSpeed-60) > 1e-6 {
		t.Fatalf("applied outSpeed = %v, want 60", data.Ease.OutSpeed)
	}
	if data.Preset != PresetCustom {
		t.Fatalf("preset marker = %v, want custom", data.Preset)
	}

	if consumed, _ := c.HandleKey(KeyEvent{Rune: 'x'}); consumed {
		t.Fatal("stray rune consumed")
	}
}

func TestCurveSetSampleMatchesPreset(t *testing.T) {
	c := NewCurveContent(nil)

	// A sample that maps exactly onto the linear preset.
	c.SetSample(EasingSample{
		OutSpeed: 100, OutInfluence: 25, InSpeed: 100, InInfluence: 25, AvgSpeed: 100,
	})
	if c.Preset() != PresetLinear {
		t.Fatalf("preset = %v, want linear", c.Preset())
	}

	// Degenerate sample seeds the diagonal.
	c.SetSample(EasingSample{AvgSpeed: 0})
	assertVec2(t, "degenerate p0", c.Curve().P0, Vec2{0.25, 0.25})
}

func TestCurvePlotRoundTrip(t *testing.T) {
	c := NewCurveContent(nil)
	for _, p := range []Vec2{{0, 0}, {1, 1}, {0.3, -0.5}, {0.7, 1.5}, {0.5, 0.5}} {
		got := c.fromPlot(c.toPlot(p))
		assertNearTol(t, "x", got.X, p.X, 1e-9)
		assertNearTol(t, "y", got.Y, p.Y, 1e-9)
	}
}

func TestCurveHandleGrabRadius(t *testing.T) {
	c := NewCurveContent(nil)
	h := c.toPlot(c.Curve().P1)

	if _, ok := c.DragStart(Vec2{X: h.X + curveGrabR - 1, Y: h.Y}); !ok {
		t.Fatal("press inside grab radius missed")
	}
	if _, ok := c.DragStart(Vec2{X: h.X + curveGrabR + 3, Y: h.Y + curveGrabR + 3}); ok {
		t.Fatal("press far from handles grabbed one")
	}
}
