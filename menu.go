package aspen

import (
	"strings"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	menuItemH   = 24.0
	menuPadX    = 12.0
	menuPadY    = 8.0
	menuMinW    = 140.0
	menuBadgeW  = 22.0
)

// MenuItem is one quick-menu entry. Shortcut is a single rune that invokes
// the item while the menu is shown; 0 means digit-by-position only.
type MenuItem struct {
	ID       string
	Label    string
	Shortcut rune
	Enabled  bool
}

// DefaultMenuItems is the built-in quick-menu ordering.
func DefaultMenuItems() []MenuItem {
	return []MenuItem{
		{ID: "anchor-grid", Label: "Anchor Grid", Shortcut: 'g', Enabled: true},
		{ID: "actions", Label: "Layer Actions", Shortcut: 'l', Enabled: true},
		{ID: "curve", Label: "Velocity Curve", Shortcut: 'v', Enabled: true},
		{ID: "copy-anchor", Label: "Copy Anchor", Shortcut: 'c', Enabled: true},
		{ID: "paste-anchor", Label: "Paste Anchor", Shortcut: 'p', Enabled: true},
	}
}

// MenuContent is the quick menu: a vertical list of labelled actions, each
// with an optional shortcut rune. Shown with focus so shortcuts do not
// reach the host.
type MenuContent struct {
	items []MenuItem
	w, h  float64
}

// NewMenuContent builds a menu over the given items. Nil falls back to the
// default ordering.
func NewMenuContent(items []MenuItem) *MenuContent {
	if items == nil {
		items = DefaultMenuItems()
	}
	m := &MenuContent{items: items}
	m.layout()
	return m
}

func (m *MenuContent) layout() {
	w := menuMinW
	for _, it := range m.items {
		lw := menuPadX + measureLabel(it.Label) + menuBadgeW + menuPadX
		if lw > w {
			w = lw
		}
	}
	m.w = w
	m.h = menuPadY*2 + float64(len(m.items))*menuItemH
}

func (m *MenuContent) Reset() {}

func (m *MenuContent) Size() (w, h float64) {
	return m.w, m.h
}

func (m *MenuContent) itemRect(i int) Rect {
	return Rect{
		X:      menuPadX / 2,
		Y:      menuPadY + float64(i)*menuItemH,
		Width:  m.w - menuPadX,
		Height: menuItemH,
	}
}

func (m *MenuContent) HitTest(p Vec2) int {
	for i := range m.items {
		if m.itemRect(i).Contains(p.X, p.Y) {
			return i
		}
	}
	return noOption
}

func (m *MenuContent) Activate(i int) (Effect, Payload) {
	if i < 0 || i >= len(m.items) || !m.items[i].Enabled {
		return EffectNone, nil
	}
	return EffectApply, MenuAction{ID: m.items[i].ID}
}

func (m *MenuContent) KeyOption(r rune) int {
	r = unicode.ToLower(r)
	for i, it := range m.items {
		if it.Shortcut != 0 && it.Shortcut == r && it.Enabled {
			return i
		}
	}
	return noOption
}

func (m *MenuContent) Draw(dst *ebiten.Image, st *OverlayState) {
	fillRect(dst, Rect{Width: m.w, Height: m.h}, colorPanel)
	strokeRect(dst, Rect{Width: m.w, Height: m.h}, colorBorder)

	for i, it := range m.items {
		r := m.itemRect(i)
		if i == st.Hover && it.Enabled {
			fillRect(dst, r, colorHover)
		}

		c := colorText
		if !it.Enabled {
			c = colorTextDim
		}
		ty := r.Y + (menuItemH-labelLineHeight)/2
		drawLabel(dst, it.Label, r.X+menuPadX/2, ty, c)

		if it.Shortcut != 0 {
			badge := strings.ToUpper(string(it.Shortcut))
			bx := r.X + r.Width - menuBadgeW
			drawLabel(dst, badge, bx, ty, colorTextDim)
		}
	}
}
