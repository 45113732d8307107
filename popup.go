package aspen

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// focusGracePeriod is the window after Show during which focus-loss events
// are ignored. It absorbs the same input event that triggered the show
// (releasing the trigger key can surface to the host as an immediate
// deactivation).
const focusGracePeriod = 300 * time.Millisecond

// hostKeySettle is the bounded synchronous delay after forwarding a
// keystroke to the host, giving the host time to process it before the
// overlay reclaims focus. A fixed timeout, never an open-ended poll.
const hostKeySettle = 30 * time.Millisecond

// noOption marks "no option hovered / dragged".
const noOption = -1

// Payload is the tagged variant an overlay hands back on apply.
type Payload interface{ isPayload() }

// GridCell selects one cell of the anchor grid.
type GridCell struct {
	X, Y int
}

// AnchorRatio is a direct anchor ratio, used by the grid's custom-anchor
// side slots. Values may overflow the box per ClampPasteRatio.
type AnchorRatio struct {
	Ratio Vec2
}

// MenuAction selects one quick-menu entry.
type MenuAction struct {
	ID string
}

// LayerAction selects one catalog action for a category.
type LayerAction struct {
	Category string
	ID       string
}

// CurveData is the curve editor's applied result.
type CurveData struct {
	Curve  VelocityCurve
	Preset PresetKind
	Ease   EasingSample
}

func (GridCell) isPayload()    {}
func (AnchorRatio) isPayload() {}
func (MenuAction) isPayload()  {}
func (LayerAction) isPayload() {}
func (CurveData) isPayload()   {}

// Result is produced exactly once per show/hide cycle. Cancelled and
// Applied are mutually exclusive; Payload is set only when Applied.
type Result struct {
	Cancelled bool
	Applied   bool
	Payload   Payload
}

// Effect tells the state machine what an option activation did.
type Effect uint8

const (
	EffectNone      Effect = iota // internal change, overlay stays open
	EffectApply                   // close with the payload applied
	EffectEmit                    // hand the payload out, stay open (pinned apply)
	EffectTogglePin               // toggle the popup's pin state
)

// Content supplies the variant-specific behavior the state machine is
// configured with: layout, hit testing, and option activation. All
// coordinates are in unscaled canvas units.
type Content interface {
	// Reset prepares the content for a new show cycle.
	Reset()
	// Size returns the unscaled canvas size.
	Size() (w, h float64)
	// HitTest returns the option index at p, or -1.
	HitTest(p Vec2) int
	// Activate invokes option i and describes the consequence.
	Activate(i int) (Effect, Payload)
	// KeyOption maps a shortcut rune to an option index, or -1.
	// Shortcuts address the current visible ordering, not stable ids.
	KeyOption(r rune) int
	// Draw renders the content onto the unscaled canvas.
	Draw(dst *ebiten.Image, st *OverlayState)
}

// DragContent is implemented by contents with draggable handles
// (the curve editor).
type DragContent interface {
	Content
	// DragStart reports whether p grabs a handle.
	DragStart(p Vec2) (handle int, ok bool)
	// DragMove updates the grabbed handle to p.
	DragMove(handle int, p Vec2)
}

// KeyContent is implemented by contents that consume typed keys beyond
// option shortcuts (search input, enter-to-apply).
type KeyContent interface {
	Content
	// HandleKey consumes a key event. A non-nil payload applies and
	// closes; consumed-without-payload means the content updated itself.
	HandleKey(ev KeyEvent) (consumed bool, payload Payload)
}

// OverlayState is the mutable interaction state of one overlay instance.
// It is owned by its Popup and mutated only by state machine transitions;
// everything except KeepOpen is discarded when the cycle ends.
type OverlayState struct {
	Phase    Phase
	ShownAt  time.Time
	KeepOpen bool // pin: survives across cycles
	Hover    int
	Dragging int // noOption unless a handle drag is active
	Pointer  Vec2
	Mode     Mode
}

// Popup is the shared lifecycle state machine behind every overlay kind.
// Construct with NewPopup; one instance per overlay kind. All methods must
// be called from a single goroutine (the host's update loop) — transitions
// assume atomicity across hit test, mutation, and redraw scheduling.
type Popup struct {
	kind    OverlayKind
	surface *Surface
	content Content

	st       OverlayState
	result   Result
	decided  bool // a result was produced this cycle
	emitted  bool // Hide already returned it
	scale    float64
	takesKbd bool

	suppressClose bool // focus loss ignored while forwarding a host key

	onEmit func(Payload) // sink for EffectEmit (pinned apply)
	now    func() time.Time
	sleep  func(time.Duration)
	logger *log.Logger
}

// PopupOption configures a Popup at construction.
type PopupOption func(*Popup)

// WithScale sets the overlay's scale factor, applied at position time.
func WithScale(scale float64) PopupOption {
	return func(p *Popup) { p.scale = scale }
}

// WithFocus marks the overlay as keyboard-intercepting: its surface is
// positioned with takeFocus and the defensive idle focus check applies.
func WithFocus() PopupOption {
	return func(p *Popup) { p.takesKbd = true }
}

// WithEmit sets the sink invoked for payloads applied while pinned open.
func WithEmit(fn func(Payload)) PopupOption {
	return func(p *Popup) { p.onEmit = fn }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) PopupOption {
	return func(p *Popup) { p.logger = l }
}

// withClock overrides time sources for tests.
func withClock(now func() time.Time, sleep func(time.Duration)) PopupOption {
	return func(p *Popup) {
		p.now = now
		p.sleep = sleep
	}
}

// NewPopup creates the state machine for one overlay kind. The surface is
// created lazily on first Show so that a missing drawing backend degrades
// to an absent overlay instead of an error.
func NewPopup(kind OverlayKind, content Content, monitors Monitors, opts ...PopupOption) *Popup {
	w, h := content.Size()
	p := &Popup{
		kind:    kind,
		surface: NewSurface(w, h, monitors),
		content: content,
		scale:   1,
		now:     time.Now,
		sleep:   time.Sleep,
		logger:  log.Default(),
	}
	p.st.Hover = noOption
	p.st.Dragging = noOption
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Surface exposes the popup's surface for drawing and host positioning.
func (p *Popup) Surface() *Surface {
	return p.surface
}

// State returns a copy of the current overlay state.
func (p *Popup) State() OverlayState {
	return p.st
}

// Pinned reports whether the pin toggle is engaged.
func (p *Popup) Pinned() bool {
	return p.st.KeepOpen
}

// SetPinned sets the pin toggle. Pin state persists across show/hide
// cycles.
func (p *Popup) SetPinned(v bool) {
	p.st.KeepOpen = v
}

// Visible reports whether the overlay is on screen.
func (p *Popup) Visible() bool {
	return p.st.Phase == PhaseShown
}

// Show transitions Hidden → Shown at the given screen point. Invoking Show
// on a non-hidden popup is a no-op. If the surface cannot be created the
// overlay stays absent (not an error to the caller).
func (p *Popup) Show(point Vec2, mode Mode) {
	if p.st.Phase != PhaseHidden {
		return
	}
	if err := p.surface.Create(); err != nil {
		p.logger.Warn("overlay surface unavailable, show is a no-op",
			"kind", p.kind.String(), "err", err)
		return
	}

	p.content.Reset()
	w, h := p.content.Size()
	p.surface.SetBaseSize(w, h)
	p.surface.Position(point, p.scale, p.takesKbd)
	p.surface.Show()

	p.result = Result{}
	p.decided = false
	p.emitted = false
	p.st.Phase = PhaseShown
	p.st.ShownAt = p.now()
	p.st.Hover = noOption
	p.st.Dragging = noOption
	p.st.Pointer = point
	p.st.Mode = mode
}

// Hide transitions to Hidden and returns the cycle's Result, finalizing a
// pending selection (hold-mode hover applies, empty hover cancels) if no
// result was decided yet. A second Hide in the same cycle returns the zero
// Result: a result is emitted exactly once per cycle.
func (p *Popup) Hide() Result {
	if p.st.Phase == PhaseShown {
		if !p.decided {
			if p.st.Mode == ModeHold && p.st.Hover != noOption {
				p.activate(p.st.Hover)
			} else {
				p.decide(Result{Cancelled: true})
			}
		}
		p.st.Phase = PhaseClosing
		p.surface.Hide()
	}
	p.st.Phase = PhaseHidden
	p.st.Hover = noOption
	p.st.Dragging = noOption

	if p.emitted {
		return Result{}
	}
	p.emitted = true
	if !p.decided {
		p.result = Result{Cancelled: true}
	}
	return p.result
}

// PointerMove updates hover from a screen-space pointer position, or moves
// the dragged handle when a drag is active.
func (p *Popup) PointerMove(screen Vec2) {
	if p.st.Phase != PhaseShown {
		return
	}
	p.st.Pointer = screen
	local := p.surface.ToLocal(screen)

	if p.st.Dragging != noOption {
		if dc, ok := p.content.(DragContent); ok {
			dc.DragMove(p.st.Dragging, local)
			p.surface.RequestRedraw()
		}
		return
	}

	hover := p.content.HitTest(local)
	if hover != p.st.Hover {
		p.st.Hover = hover
		p.surface.RequestRedraw()
	}
}

// PointerDown handles a primary-button press. A press over a draggable
// handle begins a drag; otherwise click-mode applies the option under the
// pointer immediately, while hold-mode only records it as hovered.
func (p *Popup) PointerDown(screen Vec2) {
	if p.st.Phase != PhaseShown {
		return
	}
	local := p.surface.ToLocal(screen)

	if dc, ok := p.content.(DragContent); ok {
		if handle, grabbed := dc.DragStart(local); grabbed {
			p.st.Dragging = handle
			p.surface.RequestRedraw()
			return
		}
	}

	i := p.content.HitTest(local)
	if i == noOption {
		return
	}
	if p.st.Mode == ModeClick {
		p.activate(i)
	} else {
		p.st.Hover = i
		p.surface.RequestRedraw()
	}
}

// PointerUp handles a primary-button release. It ends an active drag; in
// hold-mode it commits the hovered option (an empty hover cancels).
func (p *Popup) PointerUp(screen Vec2) {
	if p.st.Phase != PhaseShown {
		return
	}
	if p.st.Dragging != noOption {
		p.st.Dragging = noOption
		p.surface.RequestRedraw()
		return
	}
	if p.st.Mode != ModeHold {
		return
	}
	p.PointerMove(screen)
	if p.st.Hover != noOption {
		p.activate(p.st.Hover)
	} else {
		p.decide(Result{Cancelled: true})
		p.close()
	}
}

// HandleKey processes a keyboard event on a shown overlay. Escape always
// cancels. Digits address options by visible position; other runes go
// through the content's shortcut table. Contents implementing KeyContent
// see the event first.
func (p *Popup) HandleKey(ev KeyEvent) {
	if p.st.Phase != PhaseShown {
		return
	}
	if ev.Key == KeyEscape {
		p.decide(Result{Cancelled: true})
		p.close()
		return
	}

	if kc, ok := p.content.(KeyContent); ok {
		consumed, payload := kc.HandleKey(ev)
		if payload != nil {
			p.apply(payload)
			return
		}
		if consumed {
			p.surface.RequestRedraw()
			return
		}
	}

	if ev.Rune >= '1' && ev.Rune <= '9' {
		p.activate(int(ev.Rune - '1'))
		return
	}
	if ev.Rune != 0 {
		if i := p.content.KeyOption(ev.Rune); i != noOption {
			p.activate(i)
		}
	}
}

// Deactivated handles a host-reported focus loss. The transition is
// suppressed while pinned, during the post-show grace period, while a host
// keystroke is being forwarded, and once a result exists for this cycle.
func (p *Popup) Deactivated() {
	if p.st.Phase != PhaseShown || p.suppressClose {
		return
	}
	if p.st.KeepOpen || p.decided {
		return
	}
	if p.now().Sub(p.st.ShownAt) <= focusGracePeriod {
		return
	}
	p.decide(Result{Cancelled: true})
	p.close()
}

// Tick advances animations and, for focus-taking overlays, performs the
// defensive focus check for platforms whose deactivation event is
// unreliable. focused reports whether the overlay still has keyboard
// focus; dt is the tick interval in seconds.
func (p *Popup) Tick(focused bool, dt float64) {
	p.surface.StepFade(dt)
	if p.st.Phase != PhaseShown || !p.takesKbd {
		return
	}
	if !focused {
		p.Deactivated()
	}
}

// ForwardHostKey runs a host-keystroke forwarder (undo/redo from the
// action panel) with focus-loss closing suppressed, then waits a fixed
// settle delay so the host can process the stroke before the overlay
// reclaims focus. The wait is a deliberate bounded synchronous delay.
func (p *Popup) ForwardHostKey(forward func()) {
	if forward == nil {
		return
	}
	p.suppressClose = true
	forward()
	p.sleep(hostKeySettle)
	p.suppressClose = false
}

// Draw composites the overlay onto the screen.
func (p *Popup) Draw(screen *ebiten.Image) {
	p.surface.Draw(screen, func(dst *ebiten.Image) {
		p.content.Draw(dst, &p.st)
	})
}

// activate runs option i and applies its effect.
func (p *Popup) activate(i int) {
	eff, payload := p.content.Activate(i)
	switch eff {
	case EffectApply:
		p.apply(payload)
	case EffectEmit:
		if p.onEmit != nil && payload != nil {
			p.onEmit(payload)
		}
		p.surface.RequestRedraw()
	case EffectTogglePin:
		p.st.KeepOpen = !p.st.KeepOpen
		p.surface.RequestRedraw()
	default:
		p.surface.RequestRedraw()
	}
}

// apply commits a payload. Pinned overlays with an emit sink hand the
// payload out and stay open; otherwise the cycle closes applied.
func (p *Popup) apply(payload Payload) {
	if p.st.KeepOpen && p.onEmit != nil {
		p.onEmit(payload)
		p.surface.RequestRedraw()
		return
	}
	p.decide(Result{Applied: true, Payload: payload})
	p.close()
}

// decide records the cycle's result. Only the first decision of a cycle
// sticks.
func (p *Popup) decide(r Result) {
	if p.decided {
		return
	}
	p.result = r
	p.decided = true
}

// close transitions Shown → Closing and hides the surface. The caller
// completes the cycle (and obtains the Result) via Hide.
func (p *Popup) close() {
	if p.st.Phase != PhaseShown {
		return
	}
	p.st.Phase = PhaseClosing
	p.st.Dragging = noOption
	p.surface.Hide()
}
