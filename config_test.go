package aspen

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(t.TempDir(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	return s
}

func TestStoreSettingsRoundTrip(t *testing.T) {
	s := testStore(t)

	cfg := DefaultSettings()
	cfg.GridColumns = 5
	cfg.UseMask = true
	cfg.Scale = map[string]float64{"grid": 1.5}
	if err := s.SaveSettings(cfg); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got := s.Settings()
	if got.GridColumns != 5 || !got.UseMask {
		t.Fatalf("settings = %+v", got)
	}
	assertNear(t, "grid scale", got.ScaleFor(KindGrid), 1.5)
	assertNear(t, "default scale", got.ScaleFor(KindMenu), 1)
}

func TestStoreSettingsMissingGivesDefaults(t *testing.T) {
	s := testStore(t)
	got := s.Settings()
	def := DefaultSettings()
	if got.GridColumns != def.GridColumns || got.GridRows != def.GridRows {
		t.Fatalf("settings = %+v, want defaults", got)
	}
}

func TestStoreSettingsMalformedGivesDefaults(t *testing.T) {
	s := testStore(t)
	if err := s.d.Write(settingsKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := s.Settings()
	if got.GridColumns != DefaultSettings().GridColumns {
		t.Fatalf("settings = %+v, want defaults", got)
	}
}

func TestStoreSettingsValidatedOnLoad(t *testing.T) {
	s := testStore(t)
	if err := s.writeJSON(settingsKey, Settings{
		GridColumns: 50,
		GridRows:    0,
		Scale:       map[string]float64{"grid": -2},
		CustomAnchors: []Vec2{{X: 9, Y: -9}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got := s.Settings()
	if got.GridColumns != gridDimMax || got.GridRows != gridDimMin {
		t.Fatalf("dims = %dx%d", got.GridColumns, got.GridRows)
	}
	assertNear(t, "bad scale dropped", got.ScaleFor(KindGrid), 1)
	assertVec2(t, "anchor clamped", got.CustomAnchors[0], Vec2{1.2, -0.2})
}

func TestStoreCurveSlots(t *testing.T) {
	s := testStore(t)

	if got := s.CurveSlots(); got[0].Filled {
		t.Fatal("fresh store has filled slots")
	}

	var slots [CurveSlotCount]PresetSlot
	slots[2] = PresetSlot{
		Curve:  VelocityCurve{P0: Vec2{0.1, 0.9}, P1: Vec2{0.8, 0.2}},
		Filled: true,
	}
	if err := s.SaveCurveSlots(slots); err != nil {
		t.Fatalf("SaveCurveSlots: %v", err)
	}

	got := s.CurveSlots()
	if !got[2].Filled || got[0].Filled {
		t.Fatalf("slots = %+v", got)
	}
	assertVec2(t, "slot curve p0", got[2].Curve.P0, Vec2{0.1, 0.9})
}

func TestStoreCurveSlotsClampedOnLoad(t *testing.T) {
	s := testStore(t)
	var slots [CurveSlotCount]PresetSlot
	slots[0] = PresetSlot{
		Curve:  VelocityCurve{P0: Vec2{-3, 9}, P1: Vec2{4, -4}},
		Filled: true,
	}
	if err := s.SaveCurveSlots(slots); err != nil {
		t.Fatalf("SaveCurveSlots: %v", err)
	}

	got := s.CurveSlots()
	assertVec2(t, "p0", got[0].Curve.P0, Vec2{0, curveYMax})
	assertVec2(t, "p1", got[0].Curve.P1, Vec2{1, curveYMin})
}

func TestStoreCatalogDocument(t *testing.T) {
	s := testStore(t)

	if got := s.Catalog(); len(got.Actions("shape")) == 0 {
		t.Fatal("missing document lost defaults")
	}

	doc := []byte(`{"shape": [{"id": "wiggle", "enabled": true}]}`)
	if err := s.SaveCatalogDocument(doc); err != nil {
		t.Fatalf("SaveCatalogDocument: %v", err)
	}
	got := s.Catalog()
	actions := got.Actions("shape")
	if len(actions) != 1 || actions[0].ID != "wiggle" {
		t.Fatalf("actions = %+v", actions)
	}
}
