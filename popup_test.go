package aspen

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) sleep(d time.Duration)   { c.slept = append(c.slept, d) }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testMonitor() SingleMonitor {
	return SingleMonitor{Area: Rect{Width: 1920, Height: 1080}}
}

// cellScreenCenter returns the screen position over a grid cell.
func cellScreenCenter(p *Popup, col, row int) Vec2 {
	r := p.Surface().Rect()
	s := p.Surface().Scale()
	lx := gridMargin + float64(col)*(gridCellSize+gridCellGap) + gridCellSize/2
	ly := gridMargin + float64(row)*(gridCellSize+gridCellGap) + gridCellSize/2
	return Vec2{X: r.X + lx*s, Y: r.Y + ly*s}
}

// --- Scenarios ---

func TestGridHoldMode(t *testing.T) {
	clock := newFakeClock()
	grid := NewGridContent(GridConfig{Columns: 5, Rows: 5})
	p := NewPopup(KindGrid, grid, testMonitor(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{500, 500}, ModeHold)
	if !p.Visible() {
		t.Fatal("popup not shown")
	}

	at := cellScreenCenter(p, 2, 2)
	p.PointerMove(at)
	if got := p.State().Hover; got != 2*5+2 {
		t.Fatalf("hover = %d, want %d", got, 2*5+2)
	}

	p.PointerUp(at)
	r := p.Hide()
	if !r.Applied || r.Cancelled {
		t.Fatalf("result = %+v, want applied", r)
	}
	cell, ok := r.Payload.(GridCell)
	if !ok || cell != (GridCell{X: 2, Y: 2}) {
		t.Fatalf("payload = %#v, want GridCell{2 2}", r.Payload)
	}
	if p.State().Phase != PhaseHidden {
		t.Fatalf("phase = %v, want hidden", p.State().Phase)
	}
}

func TestMenuCancelKey(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindMenu, NewMenuContent(nil), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{100, 100}, ModeClick)
	p.HandleKey(KeyEvent{Key: KeyEscape})

	r := p.Hide()
	if !r.Cancelled || r.Applied {
		t.Fatalf("result = %+v, want cancelled", r)
	}
	if p.State().Phase != PhaseHidden {
		t.Fatalf("phase = %v, want hidden", p.State().Phase)
	}
}

func TestClickModeAppliesOnPress(t *testing.T) {
	clock := newFakeClock()
	grid := NewGridContent(GridConfig{Columns: 3, Rows: 3})
	p := NewPopup(KindGrid, grid, testMonitor(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{300, 300}, ModeClick)
	p.PointerDown(cellScreenCenter(p, 0, 1))

	r := p.Hide()
	if !r.Applied {
		t.Fatalf("result = %+v, want applied", r)
	}
	if cell := r.Payload.(GridCell); cell != (GridCell{X: 0, Y: 1}) {
		t.Fatalf("payload = %#v", cell)
	}
}

func TestHoldModeReleaseOutsideCancels(t *testing.T) {
	clock := newFakeClock()
	grid := NewGridContent(GridConfig{Columns: 3, Rows: 3})
	p := NewPopup(KindGrid, grid, testMonitor(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{300, 300}, ModeHold)
	r := p.Surface().Rect()
	p.PointerUp(Vec2{X: r.X - 50, Y: r.Y - 50})

	res := p.Hide()
	if !res.Cancelled || res.Applied {
		t.Fatalf("result = %+v, want cancelled", res)
	}
}

func TestDigitShortcutByPosition(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindMenu, NewMenuContent(nil), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{200, 200}, ModeClick)
	p.HandleKey(KeyEvent{Rune: '2'})

	r := p.Hide()
	action, ok := r.Payload.(MenuAction)
	if !r.Applied || !ok {
		t.Fatalf("result = %+v, want applied menu action", r)
	}
	if action.ID != DefaultMenuItems()[1].ID {
		t.Fatalf("action = %q, want second item", action.ID)
	}
}

func TestShortcutRune(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindMenu, NewMenuContent(nil), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{200, 200}, ModeClick)
	p.HandleKey(KeyEvent{Rune: 'v'})

	r := p.Hide()
	if action := r.Payload.(MenuAction); action.ID != "curve" {
		t.Fatalf("action = %q, want curve", action.ID)
	}
}

// --- Focus loss ---

func TestFocusLossInsideGraceIgnored(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindMenu, NewMenuContent(nil), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{100, 100}, ModeClick)
	clock.advance(focusGracePeriod - time.Millisecond)
	p.Deactivated()
	if !p.Visible() {
		t.Fatal("focus loss inside grace period closed the overlay")
	}
}

func TestFocusLossAfterGraceCancels(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindMenu, NewMenuContent(nil), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{100, 100}, ModeClick)
	clock.advance(focusGracePeriod + time.Millisecond)
	p.Deactivated()
	if p.Visible() {
		t.Fatal("focus loss after grace period did not close")
	}

	r := p.Hide()
	if !r.Cancelled {
		t.Fatalf("result = %+v, want cancelled", r)
	}
}

func TestPinSuppressesFocusLoss(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindActionPanel, NewPanelContent(nil, "shape"), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))
	p.SetPinned(true)

	p.Show(Vec2{100, 100}, ModeClick)
	clock.advance(focusGracePeriod * 2)
	p.Deactivated()
	if !p.Visible() {
		t.Fatal("pinned overlay closed on focus loss")
	}

	// Pin survives the cycle.
	p.Hide()
	if !p.Pinned() {
		t.Fatal("pin state lost across cycle")
	}
}

func TestIdleTickDefensiveFocusCheck(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindMenu, NewMenuContent(nil), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{100, 100}, ModeClick)
	clock.advance(focusGracePeriod * 2)
	p.Tick(false, 1.0/60)
	if p.Visible() {
		t.Fatal("idle tick did not close unfocused overlay")
	}
}

// --- Result semantics ---

func TestResultEmittedOnce(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindMenu, NewMenuContent(nil), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{100, 100}, ModeClick)
	p.HandleKey(KeyEvent{Key: KeyEscape})

	first := p.Hide()
	if !first.Cancelled {
		t.Fatalf("first = %+v, want cancelled", first)
	}
	second := p.Hide()
	if second.Cancelled || second.Applied {
		t.Fatalf("second = %+v, want zero result", second)
	}
}

func TestResultNeverBothFlags(t *testing.T) {
	clock := newFakeClock()
	grid := NewGridContent(GridConfig{Columns: 3, Rows: 3})
	p := NewPopup(KindGrid, grid, testMonitor(), withClock(clock.now, clock.sleep))

	// Apply then attempt a cancel in the same cycle: first decision wins.
	p.Show(Vec2{300, 300}, ModeClick)
	p.PointerDown(cellScreenCenter(p, 1, 1))
	p.HandleKey(KeyEvent{Key: KeyEscape})

	r := p.Hide()
	if r.Cancelled && r.Applied {
		t.Fatalf("result = %+v, flags must be mutually exclusive", r)
	}
	if !r.Applied {
		t.Fatalf("result = %+v, want the first decision (applied)", r)
	}
}

// --- Keep-open apply ---

func TestPinnedApplyEmitsAndStaysOpen(t *testing.T) {
	clock := newFakeClock()
	panel := NewPanelContent(nil, "shape")
	var emitted []Payload
	p := NewPopup(KindActionPanel, panel, testMonitor(),
		WithFocus(),
		WithEmit(func(pl Payload) { emitted = append(emitted, pl) }),
		withClock(clock.now, clock.sleep))
	p.SetPinned(true)

	p.Show(Vec2{400, 400}, ModeClick)
	p.HandleKey(KeyEvent{Key: KeyEnter})

	if !p.Visible() {
		t.Fatal("pinned apply closed the overlay")
	}
	if len(emitted) != 1 {
		t.Fatalf("emitted %d payloads, want 1", len(emitted))
	}
	if _, ok := emitted[0].(LayerAction); !ok {
		t.Fatalf("payload = %#v, want LayerAction", emitted[0])
	}
}

// --- Host key forwarding ---

func TestForwardHostKeySuppressesFocusLoss(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindActionPanel, NewPanelContent(nil, "shape"), testMonitor(),
		WithFocus(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{400, 400}, ModeClick)
	clock.advance(focusGracePeriod * 2)

	p.ForwardHostKey(func() {
		// The forwarded keystroke steals focus; the resulting
		// deactivation must not close the panel.
		p.Deactivated()
	})
	if !p.Visible() {
		t.Fatal("forwarding closed the overlay")
	}
	if len(clock.slept) != 1 || clock.slept[0] != hostKeySettle {
		t.Fatalf("slept %v, want one %v settle", clock.slept, hostKeySettle)
	}

	// Suppression ends with the forward.
	p.Deactivated()
	if p.Visible() {
		t.Fatal("focus loss ignored after forwarding finished")
	}
}

// --- Surface failure ---

func TestSurfaceFailureMakesShowNoOp(t *testing.T) {
	clock := newFakeClock()
	p := NewPopup(KindGrid, NewGridContent(GridConfig{Columns: 3, Rows: 3}),
		testMonitor(), withClock(clock.now, clock.sleep))
	p.Surface().newCanvas = func(w, h int) *ebiten.Image { return nil }

	p.Show(Vec2{100, 100}, ModeHold)
	if p.Visible() {
		t.Fatal("show succeeded with failed surface")
	}
	// Failure is permanent for the process lifetime.
	p.Show(Vec2{100, 100}, ModeHold)
	if p.Visible() {
		t.Fatal("second show succeeded after failure")
	}
}

// --- Reuse across cycles ---

func TestPopupReusableAcrossCycles(t *testing.T) {
	clock := newFakeClock()
	grid := NewGridContent(GridConfig{Columns: 3, Rows: 3})
	p := NewPopup(KindGrid, grid, testMonitor(), withClock(clock.now, clock.sleep))

	p.Show(Vec2{300, 300}, ModeClick)
	p.PointerDown(cellScreenCenter(p, 0, 0))
	first := p.Hide()
	if !first.Applied {
		t.Fatalf("first = %+v", first)
	}

	p.Show(Vec2{600, 600}, ModeClick)
	if !p.Visible() {
		t.Fatal("popup not reusable after a cycle")
	}
	p.HandleKey(KeyEvent{Key: KeyEscape})
	second := p.Hide()
	if !second.Cancelled {
		t.Fatalf("second = %+v", second)
	}
}
