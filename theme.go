package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// Shared overlay palette. Overlays are deliberately flat and dark so they
// read as transient chrome over any host document.
var (
	colorPanel   = Color{0.10, 0.10, 0.12, 0.96}
	colorBorder  = Color{0.32, 0.32, 0.38, 1}
	colorCell    = Color{0.20, 0.20, 0.24, 1}
	colorHover   = Color{0.28, 0.42, 0.62, 1}
	colorAccent  = Color{0.36, 0.58, 0.92, 1}
	colorText    = Color{0.88, 0.88, 0.90, 1}
	colorTextDim = Color{0.55, 0.55, 0.60, 1}
)

// labelFace is the fixed bitmap face used for all overlay labels.
var labelFace text.Face = text.NewGoXFace(basicfont.Face7x13)

const labelLineHeight = 13

// drawLabel renders a single line of text with its top-left corner at
// (x, y) in unscaled canvas units.
func drawLabel(dst *ebiten.Image, s string, x, y float64, c Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	text.Draw(dst, s, labelFace, op)
}

// measureLabel returns the rendered width of a single line.
func measureLabel(s string) float64 {
	w, _ := text.Measure(s, labelFace, labelLineHeight)
	return w
}
