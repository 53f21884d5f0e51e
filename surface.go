package glyphmosaic

import "image/color"

type FontFamily int

const (
	Monospace FontFamily = iota
	SansSerif
	Serif
)

type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

type TextBaseline int

const (
	BaselineAlphabetic TextBaseline = iota
	BaselineMiddle
	BaselineTop
)

// TextStyle is the font state used by FillText.
type TextStyle struct {
	Family   FontFamily
	Size     float64
	Bold     bool
	Italic   bool
	Align    TextAlign
	Baseline TextBaseline
	// Extra advance between runes, in pixels.
	LetterSpacing float64
	// ShadowBlur > 0 with a non-transparent ShadowColor draws a blurred
	// copy of the text beneath it.
	ShadowColor color.Color
	ShadowBlur  float64
}

// Surface is the drawing target every layer paints onto.
//
// Save and Restore bracket style state: fill color, global alpha and text
// style. Geometry never lives in that state; each FillText call carries its
// own Transform.
type Surface interface {
	Size() (width, height float64)
	Save()
	Restore()
	SetFillColor(c color.Color)
	SetGlobalAlpha(alpha float64)
	SetTextStyle(style TextStyle)
	FillRect(x, y, w, h float64)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Fill()
	// FillText draws s at the local origin of at.
	FillText(s string, at Transform)
}

type surfaceState struct {
	fill  color.Color
	alpha float64
	style TextStyle
}

func defaultSurfaceState() surfaceState {
	return surfaceState{fill: color.Black, alpha: 1, style: TextStyle{Size: 10}}
}

// withAlpha scales c by alpha, returning a premultiplied color.
func withAlpha(c color.Color, alpha float64) color.Color {
	if c == nil {
		c = color.Black
	}
	alpha = max(0, min(1, alpha))
	r, g, b, a := c.RGBA()
	return color.RGBA64{
		R: uint16(float64(r) * alpha),
		G: uint16(float64(g) * alpha),
		B: uint16(float64(b) * alpha),
		A: uint16(float64(a) * alpha),
	}
}
