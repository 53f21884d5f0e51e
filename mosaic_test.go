package glyphmosaic

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMosaic(src *RasterSource, density int) Mosaic {
	return Mosaic{
		Source: src,
		Region: Region{
			X:      100,
			Y:      50,
			Width:  float64(src.Width()),
			Height: float64(src.Height()),
		},
		Options: MosaicOptions{Density: density, Opacity: 1, FontScale: 1.8},
		Gate:    DefaultGate(),
		Picker:  BinaryPicker(),
	}
}

func TestMosaicScenarios(t *testing.T) {
	tests := []struct {
		name string
		p    Pixel
		want int
	}{
		{"opaque black", Pixel{0, 0, 0, 255}, 4},
		{"opaque white", Pixel{255, 255, 255, 255}, 0},
		{"transparent black", Pixel{0, 0, 0, 0}, 0},
		{"transparent red", Pixel{255, 0, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMosaic(solidRaster(t, 10, 10, tt.p), 5)
			rec := NewRecorder(400, 400)
			n, err := m.Draw(rec, NewRand(1))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Len(t, rec.Texts(), tt.want)
		})
	}
}

func TestMosaicGlyphPositions(t *testing.T) {
	m := newTestMosaic(solidRaster(t, 10, 10, Pixel{0, 0, 0, 255}), 5)
	rec := NewRecorder(400, 400)
	_, err := m.Draw(rec, NewRand(1))
	require.NoError(t, err)

	var got []Point
	for _, op := range rec.Texts() {
		got = append(got, op.Origin())
		assert.Contains(t, []string{"0", "1"}, op.Text)
		assert.InDelta(t, 9.0, op.Style.Size, 1e-9)
		assert.True(t, op.Style.Bold)
		assert.Equal(t, AlignCenter, op.Style.Align)
		assert.Equal(t, BaselineMiddle, op.Style.Baseline)
	}
	assert.Equal(t, []Point{{100, 50}, {105, 50}, {100, 55}, {105, 55}}, got)
}

func TestMosaicFullyDarkCount(t *testing.T) {
	for _, tt := range []struct{ w, h, d int }{
		{13, 7, 5},
		{20, 20, 3},
		{1, 1, 4},
		{31, 17, 1},
	} {
		m := newTestMosaic(solidRaster(t, tt.w, tt.h, Pixel{10, 10, 10, 255}), tt.d)
		n, err := m.Draw(NewRecorder(100, 100), NewRand(2))
		require.NoError(t, err)
		want := int(math.Ceil(float64(tt.w)/float64(tt.d)) * math.Ceil(float64(tt.h)/float64(tt.d)))
		assert.Equal(t, want, n, "%+v", tt)
	}
}

// Every drawn glyph sits on an eligible pixel, and every eligible grid
// point gets a glyph.
func TestMosaicGateExclusion(t *testing.T) {
	const w, h, d = 40, 30, 3
	rng := NewRand(11)
	pix := make([]uint8, w*h*4)
	for i := range pix {
		pix[i] = uint8(rng.IntN(256))
	}
	src, err := NewRasterSource(w, h, pix)
	require.NoError(t, err)

	m := newTestMosaic(src, d)
	m.Region.X, m.Region.Y = 0, 0
	rec := NewRecorder(w, h)
	n, err := m.Draw(rec, NewRand(1))
	require.NoError(t, err)

	eligible := 0
	grid, err := NewSampleGrid(w, h, d)
	require.NoError(t, err)
	for p := range grid.Points() {
		if m.Gate.Eligible(src.At(p.X, p.Y)) {
			eligible++
		}
	}
	assert.Equal(t, eligible, n)
	for _, op := range rec.Texts() {
		o := op.Origin()
		assert.True(t, m.Gate.Eligible(src.At(int(o.X), int(o.Y))), "glyph at %+v", o)
	}
}

func TestMosaicColorAndPlacement(t *testing.T) {
	m := newTestMosaic(solidRaster(t, 10, 10, Pixel{0, 0, 0, 255}), 5)
	m.Options.Opacity = 0.4
	m.Color = func(x, y float64) color.Color {
		if x > 102 {
			return color.White
		}
		return color.Black
	}
	tilt := DefaultTiltOptions()
	m.Place = func(col, row int) Transform {
		return TiltTransform(m.Region, col, row, tilt)
	}

	rec := NewRecorder(400, 400)
	rec.SetGlobalAlpha(0.9)
	_, err := m.Draw(rec, NewRand(1))
	require.NoError(t, err)

	texts := rec.Texts()
	require.Len(t, texts, 4)
	assert.Equal(t, color.Black, texts[0].Color)
	assert.Equal(t, color.White, texts[1].Color)
	for _, op := range texts {
		assert.Equal(t, 0.4, op.Alpha)
		assert.Equal(t, 0.8, op.At.ScaleY)
	}
	// Row 5 of a 10-row region is skewed by half of SkewX.
	assert.InDelta(t, 100+0-45, texts[2].At.X, 1e-9)
	assert.Equal(t, 0.9, rec.Alpha())
}

func TestMosaicErrors(t *testing.T) {
	black := Pixel{0, 0, 0, 255}

	m := newTestMosaic(solidRaster(t, 10, 10, black), 0)
	_, err := m.Draw(NewRecorder(10, 10), NewRand(1))
	assert.ErrorIs(t, err, ErrInvalidDensity)

	// Density is checked before the region.
	m = newTestMosaic(solidRaster(t, 0, 0, black), -1)
	_, err = m.Draw(NewRecorder(10, 10), NewRand(1))
	assert.ErrorIs(t, err, ErrInvalidDensity)

	for _, src := range []*RasterSource{solidRaster(t, 0, 10, black), solidRaster(t, 10, 0, black), nil} {
		m = Mosaic{
			Source:  src,
			Region:  Region{Width: 10, Height: 10},
			Options: MosaicOptions{Density: 5, Opacity: 1},
			Gate:    DefaultGate(),
		}
		rec := NewRecorder(10, 10)
		n, err := m.Draw(rec, NewRand(1))
		assert.ErrorIs(t, err, ErrDegenerateRegion)
		assert.Zero(t, n)
		assert.Empty(t, rec.Ops)
	}

	m = newTestMosaic(solidRaster(t, 10, 10, black), 5)
	m.Region.Width = math.NaN()
	_, err = m.Draw(NewRecorder(10, 10), NewRand(1))
	assert.ErrorIs(t, err, ErrDegenerateRegion)
}

func TestPlacement(t *testing.T) {
	src := solidRaster(t, 200, 100, Pixel{})

	r := PlaceByHeight(3840, 2160, src, DefaultPrimaryOptions())
	h := 2160 * 0.7
	w := 2.0 * h
	assert.Equal(t, math.Floor(h), r.Height)
	assert.Equal(t, math.Floor(w), r.Width)
	assert.InDelta(t, (3840-200-w)/2, r.X, 1e-9)
	assert.InDelta(t, (2160-h)/2, r.Y, 1e-9)

	r = PlaceByWidth(3840, 2160, src, DefaultTiltedOptions())
	w = 3840 * 0.12
	h = w / 2
	margin := 3840 * 0.02
	assert.Equal(t, math.Floor(w), r.Width)
	assert.Equal(t, math.Floor(h), r.Height)
	assert.InDelta(t, 3840+150-w-margin, r.X, 1e-9)
	assert.InDelta(t, 2160-20-h-margin, r.Y, 1e-9)

	assert.False(t, PlaceByHeight(100, 100, nil, DefaultPrimaryOptions()).Valid())
	assert.False(t, PlaceByWidth(100, 100, solidRaster(t, 0, 3, Pixel{}), DefaultTiltedOptions()).Valid())
}
