package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sahilm/fuzzy"
)

const (
	panelW       = 208.0
	panelPad     = 8.0
	panelSearchH = 24.0
	panelItemH   = 22.0
	panelFooterH = 24.0
	panelPinW    = 26.0
)

// catalogSource adapts an action list to the fuzzy matcher.
type catalogSource []CatalogEntry

func (s catalogSource) String(i int) string { return s[i].Label }
func (s catalogSource) Len() int            { return len(s) }

// PanelContent is the per-category action panel: an ordered action list
// with incremental fuzzy search, a pin button, arrow-key selection, and
// undo/redo forwarding to the host. Shown with focus.
type PanelContent struct {
	catalog  *ActionCatalog
	category string

	// OnHostKey forwards an undo (redo=false) or redo keystroke to the
	// host. Wired by the caller through Popup.ForwardHostKey so focus-loss
	// closing stays suppressed for the duration.
	OnHostKey func(redo bool)

	all     []CatalogEntry
	visible []CatalogEntry
	query   []rune
	cursor  int

	h float64
}

// NewPanelContent builds the panel over a catalog. A nil catalog uses the
// built-in defaults.
func NewPanelContent(catalog *ActionCatalog, category string) *PanelContent {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	p := &PanelContent{catalog: catalog, category: category}
	p.Reset()
	return p
}

// SetCategory switches the panel to another category's action list. Takes
// effect on the next show.
func (p *PanelContent) SetCategory(category string) {
	p.category = category
}

func (p *PanelContent) Reset() {
	p.all = p.catalog.Actions(p.category)
	p.query = p.query[:0]
	p.cursor = 0
	p.refilter()
	p.h = panelPad + panelSearchH + panelPad +
		float64(len(p.all))*panelItemH + panelPad + panelFooterH + panelPad
}

func (p *PanelContent) refilter() {
	if len(p.query) == 0 {
		p.visible = p.all
	} else {
		matches := fuzzy.FindFrom(string(p.query), catalogSource(p.all))
		p.visible = make([]CatalogEntry, 0, len(matches))
		for _, m := range matches {
			p.visible = append(p.visible, p.all[m.Index])
		}
	}
	if p.cursor >= len(p.visible) {
		p.cursor = len(p.visible) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *PanelContent) Size() (w, h float64) {
	return panelW, p.h
}

// Option indices: visible actions first, then pin, undo, redo.
func (p *PanelContent) pinIndex() int  { return len(p.visible) }
func (p *PanelContent) undoIndex() int { return len(p.visible) + 1 }
func (p *PanelContent) redoIndex() int { return len(p.visible) + 2 }

func (p *PanelContent) searchRect() Rect {
	return Rect{X: panelPad, Y: panelPad, Width: panelW - panelPad*2 - panelPinW - 4, Height: panelSearchH}
}

func (p *PanelContent) pinRect() Rect {
	return Rect{X: panelW - panelPad - panelPinW, Y: panelPad, Width: panelPinW, Height: panelSearchH}
}

func (p *PanelContent) itemRect(i int) Rect {
	return Rect{
		X:      panelPad,
		Y:      panelPad + panelSearchH + panelPad + float64(i)*panelItemH,
		Width:  panelW - panelPad*2,
		Height: panelItemH,
	}
}

func (p *PanelContent) footerRect(i int) Rect {
	half := (panelW - panelPad*3) / 2
	return Rect{
		X:      panelPad + float64(i)*(half+panelPad),
		Y:      p.h - panelPad - panelFooterH,
		Width:  half,
		Height: panelFooterH,
	}
}

func (p *PanelContent) HitTest(pt Vec2) int {
	for i := range p.visible {
		if p.itemRect(i).Contains(pt.X, pt.Y) {
			return i
		}
	}
	if p.pinRect().Contains(pt.X, pt.Y) {
		return p.pinIndex()
	}
	if p.footerRect(0).Contains(pt.X, pt.Y) {
		return p.undoIndex()
	}
	if p.footerRect(1).Contains(pt.X, pt.Y) {
		return p.redoIndex()
	}
	return noOption
}

func (p *PanelContent) Activate(i int) (Effect, Payload) {
	switch {
	case i >= 0 && i < len(p.visible):
		return EffectApply, LayerAction{Category: p.category, ID: p.visible[i].ID}
	case i == p.pinIndex():
		return EffectTogglePin, nil
	case i == p.undoIndex():
		if p.OnHostKey != nil {
			p.OnHostKey(false)
		}
		return EffectNone, nil
	case i == p.redoIndex():
		if p.OnHostKey != nil {
			p.OnHostKey(true)
		}
		return EffectNone, nil
	}
	return EffectNone, nil
}

// KeyOption is unused: printable keys feed the search query instead.
func (p *PanelContent) KeyOption(rune) int {
	return noOption
}

// HandleKey implements incremental search and arrow-key selection.
// Digits with an empty query fall through to position shortcuts.
func (p *PanelContent) HandleKey(ev KeyEvent) (bool, Payload) {
	switch ev.Key {
	case KeyUp:
		if p.cursor > 0 {
			p.cursor--
		}
		return true, nil
	case KeyDown:
		if p.cursor < len(p.visible)-1 {
			p.cursor++
		}
		return true, nil
	case KeyBackspace:
		if len(p.query) > 0 {
			p.query = p.query[:len(p.query)-1]
			p.refilter()
		}
		return true, nil
	case KeyEnter:
		if len(p.visible) == 0 {
			return true, nil
		}
		e := p.visible[p.cursor]
		return true, LayerAction{Category: p.category, ID: e.ID}
	}

	if ev.Rune == 0 || ev.Ctrl {
		return false, nil
	}
	if ev.Rune >= '1' && ev.Rune <= '9' && len(p.query) == 0 {
		return false, nil
	}
	p.query = append(p.query, ev.Rune)
	p.refilter()
	return true, nil
}

func (p *PanelContent) Draw(dst *ebiten.Image, st *OverlayState) {
	fillRect(dst, Rect{Width: panelW, Height: p.h}, colorPanel)
	strokeRect(dst, Rect{Width: panelW, Height: p.h}, colorBorder)

	// Search box.
	sr := p.searchRect()
	fillRect(dst, sr, colorCell)
	q := string(p.query)
	if q == "" {
		drawLabel(dst, "search", sr.X+6, sr.Y+6, colorTextDim)
	} else {
		drawLabel(dst, q, sr.X+6, sr.Y+6, colorText)
		caretX := sr.X + 6 + measureLabel(q) + 1
		fillRect(dst, Rect{X: caretX, Y: sr.Y + 5, Width: 1, Height: labelLineHeight}, colorText)
	}

	// Pin.
	pr := p.pinRect()
	fillRect(dst, pr, colorCell)
	if st.KeepOpen {
		strokeRect(dst, pr, colorAccent)
	}
	pc := colorTextDim
	if st.KeepOpen {
		pc = colorAccent
	}
	drawLabel(dst, "P", pr.X+9, pr.Y+6, pc)

	// Actions.
	for i, e := range p.visible {
		r := p.itemRect(i)
		switch {
		case i == st.Hover:
			fillRect(dst, r, colorHover)
		case i == p.cursor:
			fillRect(dst, r, colorCell)
		}
		drawLabel(dst, e.Label, r.X+6, r.Y+4, colorText)
	}
	if len(p.visible) == 0 {
		r := p.itemRect(0)
		drawLabel(dst, "no matches", r.X+6, r.Y+4, colorTextDim)
	}

	// Undo / redo.
	for i, label := range [2]string{"Undo", "Redo"} {
		r := p.footerRect(i)
		c := colorCell
		if st.Hover == p.undoIndex()+i {
			c = colorHover
		}
		fillRect(dst, r, c)
		tx := r.X + (r.Width-measureLabel(label))/2
		drawLabel(dst, label, tx, r.Y+5, colorText)
	}
}
