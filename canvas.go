package glyphmosaic

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Canvas is a raster Surface backed by a gg.Context.
type Canvas struct {
	dc    *gg.Context
	state surfaceState
	stack []surfaceState
	faces map[faceKey]font.Face
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		dc:    gg.NewContext(width, height),
		state: defaultSurfaceState(),
		faces: map[faceKey]font.Face{},
	}
}

func (c *Canvas) Image() image.Image { return c.dc.Image() }

func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

func (c *Canvas) Size() (float64, float64) {
	return float64(c.dc.Width()), float64(c.dc.Height())
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.state)
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) SetFillColor(col color.Color) { c.state.fill = col }
func (c *Canvas) SetGlobalAlpha(alpha float64) { c.state.alpha = alpha }
func (c *Canvas) SetTextStyle(style TextStyle) { c.state.style = style }
func (c *Canvas) BeginPath()                   { c.dc.ClearPath() }
func (c *Canvas) MoveTo(x, y float64)          { c.dc.MoveTo(x, y) }
func (c *Canvas) LineTo(x, y float64)          { c.dc.LineTo(x, y) }
func (c *Canvas) ClosePath()                   { c.dc.ClosePath() }

// FillRect fills a rectangle. It replaces any path under construction.
func (c *Canvas) FillRect(x, y, w, h float64) {
	c.dc.ClearPath()
	c.dc.DrawRectangle(x, y, w, h)
	c.Fill()
}

func (c *Canvas) Fill() {
	c.dc.SetColor(withAlpha(c.state.fill, c.state.alpha))
	c.dc.Fill()
}

func (c *Canvas) FillText(s string, at Transform) {
	style := c.state.style
	face, err := c.face(style)
	if err != nil {
		Logger().Warn("glyphmosaic: font unavailable", "err", err)
		return
	}
	if hasShadow(style) {
		c.fillShadow(s, at, face)
	}
	c.dc.Push()
	c.dc.SetFontFace(face)
	c.dc.SetColor(withAlpha(c.state.fill, c.state.alpha))
	applyTransform(c.dc, at)
	drawText(c.dc, s, style)
	c.dc.Pop()
}

func hasShadow(style TextStyle) bool {
	if style.ShadowBlur <= 0 || style.ShadowColor == nil {
		return false
	}
	_, _, _, a := style.ShadowColor.RGBA()
	return a > 0
}

// fillShadow renders the text offscreen, blurs it and composites the result
// under the glyphs about to be drawn.
func (c *Canvas) fillShadow(s string, at Transform, face font.Face) {
	off := gg.NewContext(c.dc.Width(), c.dc.Height())
	off.SetFontFace(face)
	off.SetColor(withAlpha(c.state.style.ShadowColor, c.state.alpha))
	applyTransform(off, at)
	drawText(off, s, c.state.style)
	blurred := blur.Gaussian(off.Image(), c.state.style.ShadowBlur/2)

	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImage(blurred, 0, 0)
	c.dc.Pop()
}

func applyTransform(dc *gg.Context, at Transform) {
	dc.Translate(at.X, at.Y)
	if at.Rotation != 0 {
		dc.Rotate(at.Rotation)
	}
	if at.ScaleX != 1 || at.ScaleY != 1 {
		dc.Scale(at.ScaleX, at.ScaleY)
	}
}

func anchors(style TextStyle) (ax, ay float64) {
	switch style.Align {
	case AlignCenter:
		ax = 0.5
	case AlignRight:
		ax = 1
	}
	switch style.Baseline {
	case BaselineMiddle:
		ay = 0.5
	case BaselineTop:
		ay = 1
	}
	return ax, ay
}

// drawText draws s at the current origin, honoring alignment and letter
// spacing.
func drawText(dc *gg.Context, s string, style TextStyle) {
	ax, ay := anchors(style)
	if style.LetterSpacing == 0 {
		dc.DrawStringAnchored(s, 0, 0, ax, ay)
		return
	}
	runes := []rune(s)
	widths := make([]float64, len(runes))
	total := 0.0
	for i, r := range runes {
		widths[i], _ = dc.MeasureString(string(r))
		total += widths[i]
	}
	if len(runes) > 1 {
		total += style.LetterSpacing * float64(len(runes)-1)
	}
	x := -ax * total
	for i, r := range runes {
		dc.DrawStringAnchored(string(r), x, 0, 0, ay)
		x += widths[i] + style.LetterSpacing
	}
}

// ============ FONTS ============

type fontKey struct {
	family       FontFamily
	bold, italic bool
}

type faceKey struct {
	fontKey
	size float64
}

// Parsed fonts are shared; faces hold scratch buffers and stay per canvas.
var (
	fontsMu sync.Mutex
	fonts   = map[fontKey]*opentype.Font{}
)

var fontData = map[fontKey][]byte{
	{Monospace, false, false}: gomono.TTF,
	{Monospace, true, false}:  gomonobold.TTF,
	{Monospace, false, true}:  gomonoitalic.TTF,
	{Monospace, true, true}:   gomonobolditalic.TTF,
	{SansSerif, false, false}: goregular.TTF,
	{SansSerif, true, false}:  gobold.TTF,
	{SansSerif, false, true}:  goitalic.TTF,
	{SansSerif, true, true}:   gobolditalic.TTF,
}

func parsedFont(fk fontKey) (*opentype.Font, error) {
	fontsMu.Lock()
	defer fontsMu.Unlock()
	if f, ok := fonts[fk]; ok {
		return f, nil
	}
	f, err := opentype.Parse(fontData[fk])
	if err != nil {
		return nil, fmt.Errorf("glyphmosaic: parse font: %w", err)
	}
	fonts[fk] = f
	return f, nil
}

func (c *Canvas) face(style TextStyle) (font.Face, error) {
	fk := fontKey{family: style.Family, bold: style.Bold, italic: style.Italic}
	if _, ok := fontData[fk]; !ok {
		// x/image ships no serif face.
		fk.family = SansSerif
	}
	size := style.Size
	if size <= 0 {
		size = 10
	}
	key := faceKey{fontKey: fk, size: size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	parsed, err := parsedFont(fk)
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("glyphmosaic: font face %.1fpx: %w", size, err)
	}
	c.faces[key] = f
	return f, nil
}
