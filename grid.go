package aspen

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	gridDimMin = 3
	gridDimMax = 7

	gridMargin    = 10.0
	gridCellSize  = 30.0
	gridCellGap   = 4.0
	gridSideW     = 52.0
	gridOptionH   = 22.0
	gridOptionGap = 6.0
)

// GridConfig configures the anchor grid overlay.
type GridConfig struct {
	Columns, Rows int
	// CustomAnchors are the side-slot ratios. They may overflow [0,1];
	// applying a slot clamps with the paste overflow range.
	CustomAnchors []Vec2
	// UseMask: prefer mask outline bounds over content bounds.
	UseMask bool
	// FullBounds: compute the ratio against the full composition frame
	// instead of the layer bounds.
	FullBounds bool
}

// gridOption discriminates the grid's hit-test entries.
type gridOption struct {
	rect   Rect
	cell   GridCell
	isCell bool
	slot   int // custom anchor index, or -1
	toggle int // 0 mask, 1 full bounds, or -1
}

// GridContent is the anchor grid: Columns×Rows cells each mapping to a
// ratio (x/(cols-1), y/(rows-1)), plus a side column with bound-mode
// toggles and custom-anchor slots.
type GridContent struct {
	cfg  GridConfig
	opts []gridOption
	w, h float64
}

// NewGridContent builds the grid content. Dimensions are clamped to the
// supported range.
func NewGridContent(cfg GridConfig) *GridContent {
	cfg.Columns = clampGridDim(cfg.Columns)
	cfg.Rows = clampGridDim(cfg.Rows)
	g := &GridContent{cfg: cfg}
	g.layout()
	return g
}

func clampGridDim(n int) int {
	if n < gridDimMin {
		return gridDimMin
	}
	if n > gridDimMax {
		return gridDimMax
	}
	return n
}

// UseMask reports the mask-bounds toggle, read by the host after apply.
func (g *GridContent) UseMask() bool {
	return g.cfg.UseMask
}

// FullBounds reports the composition-bounds toggle.
func (g *GridContent) FullBounds() bool {
	return g.cfg.FullBounds
}

// CellRatio converts a selected cell to its anchor ratio.
func (g *GridContent) CellRatio(c GridCell) Vec2 {
	return Vec2{
		X: float64(c.X) / float64(g.cfg.Columns-1),
		Y: float64(c.Y) / float64(g.cfg.Rows-1),
	}
}

func (g *GridContent) layout() {
	g.opts = g.opts[:0]

	for row := 0; row < g.cfg.Rows; row++ {
		for col := 0; col < g.cfg.Columns; col++ {
			g.opts = append(g.opts, gridOption{
				rect: Rect{
					X:      gridMargin + float64(col)*(gridCellSize+gridCellGap),
					Y:      gridMargin + float64(row)*(gridCellSize+gridCellGap),
					Width:  gridCellSize,
					Height: gridCellSize,
				},
				cell:   GridCell{X: col, Y: row},
				isCell: true,
				slot:   -1,
				toggle: -1,
			})
		}
	}

	gridW := float64(g.cfg.Columns)*(gridCellSize+gridCellGap) - gridCellGap
	gridH := float64(g.cfg.Rows)*(gridCellSize+gridCellGap) - gridCellGap
	sideX := gridMargin + gridW + gridMargin

	y := gridMargin
	for t := 0; t < 2; t++ {
		g.opts = append(g.opts, gridOption{
			rect:   Rect{X: sideX, Y: y, Width: gridSideW, Height: gridOptionH},
			slot:   -1,
			toggle: t,
		})
		y += gridOptionH + gridOptionGap
	}
	for i := range g.cfg.CustomAnchors {
		g.opts = append(g.opts, gridOption{
			rect:   Rect{X: sideX, Y: y, Width: gridSideW, Height: gridOptionH},
			slot:   i,
			toggle: -1,
		})
		y += gridOptionH + gridOptionGap
	}

	sideH := y - gridOptionGap - gridMargin
	g.w = sideX + gridSideW + gridMargin
	g.h = gridMargin + gridH + gridMargin
	if need := gridMargin + sideH + gridMargin; need > g.h {
		g.h = need
	}
}

func (g *GridContent) Reset() {}

func (g *GridContent) Size() (w, h float64) {
	return g.w, g.h
}

func (g *GridContent) HitTest(p Vec2) int {
	for i, o := range g.opts {
		if o.rect.Contains(p.X, p.Y) {
			return i
		}
	}
	return noOption
}

func (g *GridContent) Activate(i int) (Effect, Payload) {
	if i < 0 || i >= len(g.opts) {
		return EffectNone, nil
	}
	o := g.opts[i]
	switch {
	case o.isCell:
		return EffectApply, o.cell
	case o.toggle == 0:
		g.cfg.UseMask = !g.cfg.UseMask
		return EffectNone, nil
	case o.toggle == 1:
		g.cfg.FullBounds = !g.cfg.FullBounds
		return EffectNone, nil
	case o.slot >= 0:
		r := ClampPasteRatio(g.cfg.CustomAnchors[o.slot])
		return EffectApply, AnchorRatio{Ratio: r}
	}
	return EffectNone, nil
}

// KeyOption: 'm' toggles mask bounds, 'f' toggles full bounds, 'a'..'c'
// address the custom slots. Cells are addressed by the digit shortcuts.
func (g *GridContent) KeyOption(r rune) int {
	cells := g.cfg.Columns * g.cfg.Rows
	switch {
	case r == 'm':
		return cells
	case r == 'f':
		return cells + 1
	case r >= 'a' && r <= 'c':
		i := int(r - 'a')
		if i < len(g.cfg.CustomAnchors) {
			return cells + 2 + i
		}
	}
	return noOption
}

func (g *GridContent) Draw(dst *ebiten.Image, st *OverlayState) {
	w, h := g.Size()
	fillRect(dst, Rect{Width: w, Height: h}, colorPanel)
	strokeRect(dst, Rect{Width: w, Height: h}, colorBorder)

	for i, o := range g.opts {
		c := colorCell
		if i == st.Hover {
			c = colorHover
		}
		fillRect(dst, o.rect, c)

		switch {
		case o.isCell:
			// Mark the centroid cell so the user can orient at a glance.
			if o.cell.X*2 == g.cfg.Columns-1 && o.cell.Y*2 == g.cfg.Rows-1 {
				dot := Rect{
					X:      o.rect.X + o.rect.Width/2 - 2,
					Y:      o.rect.Y + o.rect.Height/2 - 2,
					Width:  4,
					Height: 4,
				}
				fillRect(dst, dot, colorAccent)
			}
		case o.toggle == 0:
			g.drawToggle(dst, o.rect, "MASK", g.cfg.UseMask)
		case o.toggle == 1:
			g.drawToggle(dst, o.rect, "FULL", g.cfg.FullBounds)
		case o.slot >= 0:
			label := fmt.Sprintf("A%d", o.slot+1)
			drawLabel(dst, label, o.rect.X+6, o.rect.Y+4, colorText)
		}
	}
}

func (g *GridContent) drawToggle(dst *ebiten.Image, r Rect, label string, on bool) {
	if on {
		strokeRect(dst, r, colorAccent)
	}
	c := colorTextDim
	if on {
		c = colorText
	}
	drawLabel(dst, label, r.X+6, r.Y+4, c)
}
