package glyphmosaic

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
)

// Pixel is one 8-bit, non-premultiplied RGBA sample.
type Pixel struct {
	R, G, B, A uint8
}

// Brightness is the unweighted channel mean in [0,255].
func (p Pixel) Brightness() float64 {
	return (float64(p.R) + float64(p.G) + float64(p.B)) / 3
}

// RasterSource is an immutable decoded image. Pixels are stored row-major,
// four bytes per pixel, without premultiplied alpha.
type RasterSource struct {
	width, height int
	pix           []uint8
}

// NewRasterSource wraps a pixel buffer. The buffer is copied so later
// writes by the caller do not reach the raster.
func NewRasterSource(width, height int, pix []uint8) (*RasterSource, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("glyphmosaic: negative raster size %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("glyphmosaic: raster %dx%d needs %d bytes, got %d", width, height, width*height*4, len(pix))
	}
	return &RasterSource{
		width:  width,
		height: height,
		pix:    append([]uint8(nil), pix...),
	}, nil
}

// RasterFromImage converts any image into a RasterSource.
func RasterFromImage(img image.Image) *RasterSource {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return &RasterSource{}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &RasterSource{width: w, height: h, pix: dst.Pix}
}

func (r *RasterSource) Width() int  { return r.width }
func (r *RasterSource) Height() int { return r.height }

// Empty reports whether the raster has no pixels.
func (r *RasterSource) Empty() bool {
	return r == nil || r.width <= 0 || r.height <= 0
}

// At returns the pixel at (x, y). Out-of-range coordinates yield a fully
// transparent pixel.
func (r *RasterSource) At(x, y int) Pixel {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return Pixel{}
	}
	i := (y*r.width + x) * 4
	return Pixel{R: r.pix[i], G: r.pix[i+1], B: r.pix[i+2], A: r.pix[i+3]}
}

// Image returns a copy of the raster as an *image.NRGBA.
func (r *RasterSource) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.pix)
	return img
}

// Scaled returns the raster resampled to w×h with a linear filter.
// Sampling then happens 1:1 against the scaled pixels.
func (r *RasterSource) Scaled(w, h int) *RasterSource {
	if r.Empty() || w <= 0 || h <= 0 {
		return &RasterSource{}
	}
	if w == r.width && h == r.height {
		return r
	}
	return RasterFromImage(transform.Resize(r.Image(), w, h, transform.Linear))
}
