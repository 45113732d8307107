package aspen

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// holdDelay is how long the trigger key must stay held before the
	// overlay shows in hold-mode.
	holdDelay = 400 * time.Millisecond
	// doubleTapWindow is the maximum gap between two trigger taps that
	// toggles the overlay open in click-mode.
	doubleTapWindow = 250 * time.Millisecond
)

// Poller samples input state on each idle tick. It is the narrow surface
// behind which the real key/pointer source lives.
type Poller interface {
	IsKeyHeld(key ebiten.Key) bool
	MousePosition() Vec2
	IsPrimaryDown() bool
}

// EbitenPoller polls through ebiten's global input state.
type EbitenPoller struct{}

func (EbitenPoller) IsKeyHeld(key ebiten.Key) bool {
	return ebiten.IsKeyPressed(key)
}

func (EbitenPoller) MousePosition() Vec2 {
	mx, my := ebiten.CursorPosition()
	return Vec2{X: float64(mx), Y: float64(my)}
}

func (EbitenPoller) IsPrimaryDown() bool {
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}

// Invoker turns a trigger key's raw held state into overlay show/hide
// gestures: holding the key past holdDelay shows in hold-mode (the overlay
// applies on pointer release and hides with the key); two quick taps
// toggle the overlay open in click-mode until dismissed.
//
// Tick it once per idle tick with the poller's samples. Results surface
// through the OnResult callback when a cycle completes.
type Invoker struct {
	popup *Popup
	key   ebiten.Key

	// OnResult receives the Result of every completed cycle.
	OnResult func(Result)

	now func() time.Time

	keyWasHeld   bool
	primaryWas   bool
	pressedAt    time.Time
	lastTapAt    time.Time
	holdShown    bool
	clickLatched bool
	spent        bool // cycle ended while the key was still held
}

// NewInvoker drives popup from the held state of key.
func NewInvoker(popup *Popup, key ebiten.Key) *Invoker {
	return &Invoker{popup: popup, key: key, now: time.Now}
}

// Tick advances the gesture recognizer and routes pointer events into the
// popup. Call once per idle tick.
func (v *Invoker) Tick(p Poller) {
	now := v.now()
	held := p.IsKeyHeld(v.key)
	pos := p.MousePosition()
	primary := p.IsPrimaryDown()

	switch {
	case held && !v.keyWasHeld:
		v.pressedAt = now
	case held && !v.holdShown && !v.clickLatched && !v.spent:
		if now.Sub(v.pressedAt) >= holdDelay {
			v.popup.Show(pos, ModeHold)
			v.holdShown = true
		}
	case !held && v.keyWasHeld:
		if v.holdShown {
			v.holdShown = false
			v.finish()
		} else if now.Sub(v.pressedAt) < holdDelay {
			// A short tap. Two of them inside the window latch the
			// overlay open in click-mode; a tap while latched closes it.
			if v.clickLatched {
				v.clickLatched = false
				v.finish()
			} else if now.Sub(v.lastTapAt) <= doubleTapWindow {
				v.popup.Show(pos, ModeClick)
				v.clickLatched = true
				v.lastTapAt = time.Time{}
			} else {
				v.lastTapAt = now
			}
		}
		v.spent = false
	}
	v.keyWasHeld = held

	if v.popup.Visible() {
		v.popup.PointerMove(pos)
		if primary && !v.primaryWas {
			v.popup.PointerDown(pos)
		}
		if !primary && v.primaryWas {
			v.popup.PointerUp(pos)
		}
	}
	v.primaryWas = primary

	// The popup may have decided its result on its own (click-mode
	// apply, cancel key, focus loss). Collect it so the cycle completes
	// even when the gesture did not end it.
	if v.popup.State().Phase == PhaseClosing {
		v.clickLatched = false
		v.holdShown = false
		v.finish()
	}
}

func (v *Invoker) finish() {
	// Suppress re-show only while the trigger key is still down; a cycle
	// that ends with the key up must leave the next hold gesture live.
	v.spent = v.keyWasHeld
	r := v.popup.Hide()
	if v.OnResult != nil {
		v.OnResult(r)
	}
}
