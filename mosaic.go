package glyphmosaic

import (
	"fmt"
	"image/color"
	"iter"
	"math"
)

// Region is the frame rectangle a raster is mapped into.
type Region struct {
	X, Y, Width, Height float64
}

// Valid reports whether the region is finite and has positive area.
func (r Region) Valid() bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

// MosaicOptions are the knobs shared by both mosaic layers.
type MosaicOptions struct {
	// Pixel stride between samples. Larger is coarser.
	Density int `yaml:"density" toml:"density"`
	// Global alpha of the whole layer.
	Opacity float64 `yaml:"opacity" toml:"opacity"`
	// Glyph font size as a multiple of Density.
	FontScale float64 `yaml:"font_scale" toml:"font_scale"`
}

// PrimaryOptions place the main mosaic by height, centered.
type PrimaryOptions struct {
	MosaicOptions `yaml:",inline"`
	// Region height as a fraction of the frame height.
	HeightFraction float64 `yaml:"height_fraction" toml:"height_fraction"`
	// Horizontal shift applied before centering.
	ShiftX float64 `yaml:"shift_x" toml:"shift_x"`
}

// TiltedOptions place the tilted mosaic by width, near the bottom-right corner.
type TiltedOptions struct {
	MosaicOptions `yaml:",inline"`
	// Region width as a fraction of the frame width.
	WidthFraction float64 `yaml:"width_fraction" toml:"width_fraction"`
	// Corner margin as a fraction of the frame width.
	MarginFraction float64     `yaml:"margin_fraction" toml:"margin_fraction"`
	OffsetX        float64     `yaml:"offset_x" toml:"offset_x"`
	OffsetY        float64     `yaml:"offset_y" toml:"offset_y"`
	Tilt           TiltOptions `yaml:"tilt" toml:"tilt"`
}

func DefaultPrimaryOptions() PrimaryOptions {
	return PrimaryOptions{
		MosaicOptions:  MosaicOptions{Density: 5, Opacity: 1, FontScale: 1.8},
		HeightFraction: 0.7,
		ShiftX:         -200,
	}
}

func DefaultTiltedOptions() TiltedOptions {
	return TiltedOptions{
		MosaicOptions:  MosaicOptions{Density: 5, Opacity: 0.4, FontScale: 1.8},
		WidthFraction:  0.12,
		MarginFraction: 0.02,
		OffsetX:        150,
		OffsetY:        -20,
		Tilt:           DefaultTiltOptions(),
	}
}

// PlaceByHeight sizes a region to a fraction of the frame height, keeping
// the source aspect ratio. Sources without area give an invalid region.
func PlaceByHeight(frameW, frameH float64, src *RasterSource, opt PrimaryOptions) Region {
	if src.Empty() {
		return Region{}
	}
	h := frameH * opt.HeightFraction
	w := float64(src.Width()) / float64(src.Height()) * h
	return Region{
		X:      (frameW + opt.ShiftX - w) / 2,
		Y:      (frameH - h) / 2,
		Width:  math.Floor(w),
		Height: math.Floor(h),
	}
}

// PlaceByWidth sizes a region to a fraction of the frame width and tucks it
// into the bottom-right corner.
func PlaceByWidth(frameW, frameH float64, src *RasterSource, opt TiltedOptions) Region {
	if src.Empty() {
		return Region{}
	}
	w := frameW * opt.WidthFraction
	h := float64(src.Height()) / float64(src.Width()) * w
	margin := frameW * opt.MarginFraction
	return Region{
		X:      frameW + opt.OffsetX - w - margin,
		Y:      frameH + opt.OffsetY - h - margin,
		Width:  math.Floor(w),
		Height: math.Floor(h),
	}
}

// Glyph is a single symbol ready to be drawn. Glyphs are produced and
// drawn one at a time and never retained.
type Glyph struct {
	Symbol string
	// Sample position in the frame, before any transform.
	X, Y  float64
	Color color.Color
	At    Transform
}

// Mosaic renders one raster as a grid of glyphs.
type Mosaic struct {
	Source  *RasterSource
	Region  Region
	Options MosaicOptions
	Gate    LuminanceGate
	Picker  GlyphPicker
	// Color returns the fill of a glyph sampled at frame position (x, y).
	Color func(x, y float64) color.Color
	// Place returns the transform of the glyph at grid offset (col, row).
	// Nil draws glyphs upright at their sample position.
	Place func(col, row int) Transform
}

// Glyphs validates the mosaic and returns the sequence of glyphs that pass
// the gate. An invalid density is an error; an empty region or raster
// returns ErrDegenerateRegion.
func (m Mosaic) Glyphs(r Rand) (iter.Seq[Glyph], error) {
	if m.Options.Density < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDensity, m.Options.Density)
	}
	if !m.Region.Valid() || m.Source.Empty() {
		return nil, ErrDegenerateRegion
	}
	w, h := int(m.Region.Width), int(m.Region.Height)
	grid, err := NewSampleGrid(w, h, m.Options.Density)
	if err != nil {
		return nil, err
	}
	scaled := m.Source.Scaled(w, h)
	place := m.Place
	if place == nil {
		place = func(col, row int) Transform {
			return Translation(m.Region.X+float64(col), m.Region.Y+float64(row))
		}
	}

	return func(yield func(Glyph) bool) {
		for p := range grid.Points() {
			if !m.Gate.Eligible(scaled.At(p.X, p.Y)) {
				continue
			}
			g := Glyph{
				Symbol: m.Picker.Pick(r),
				X:      m.Region.X + float64(p.X),
				Y:      m.Region.Y + float64(p.Y),
				At:     place(p.X, p.Y),
			}
			g.Color = color.Black
			if m.Color != nil {
				g.Color = m.Color(g.X, g.Y)
			}
			if !yield(g) {
				return
			}
		}
	}, nil
}

// Draw paints the mosaic and returns the number of glyphs drawn.
func (m Mosaic) Draw(s Surface, r Rand) (int, error) {
	glyphs, err := m.Glyphs(r)
	if err != nil {
		return 0, err
	}
	fontScale := m.Options.FontScale
	if fontScale <= 0 {
		fontScale = 1.8
	}

	s.Save()
	defer s.Restore()
	s.SetTextStyle(TextStyle{
		Family:   Monospace,
		Size:     float64(m.Options.Density) * fontScale,
		Bold:     true,
		Align:    AlignCenter,
		Baseline: BaselineMiddle,
	})
	s.SetGlobalAlpha(m.Options.Opacity)

	n := 0
	for g := range glyphs {
		s.SetFillColor(g.Color)
		s.FillText(g.Symbol, g.At)
		n++
	}
	return n, nil
}
