package glyphmosaic

import (
	"fmt"
	"image"
	"iter"
)

// SampleGrid walks a width×height area at a fixed stride. It holds no
// iteration state, so Points can be ranged over any number of times.
type SampleGrid struct {
	Width, Height int
	Density       int
}

func NewSampleGrid(width, height, density int) (SampleGrid, error) {
	if density < 1 {
		return SampleGrid{}, fmt.Errorf("%w: got %d", ErrInvalidDensity, density)
	}
	return SampleGrid{Width: max(width, 0), Height: max(height, 0), Density: density}, nil
}

// Points yields (col, row) offsets row by row.
func (g SampleGrid) Points() iter.Seq[image.Point] {
	return func(yield func(image.Point) bool) {
		if g.Density < 1 {
			return
		}
		for row := 0; row < g.Height; row += g.Density {
			for col := 0; col < g.Width; col += g.Density {
				if !yield(image.Pt(col, row)) {
					return
				}
			}
		}
	}
}

// Len is the number of points Points yields.
func (g SampleGrid) Len() int {
	if g.Density < 1 || g.Width <= 0 || g.Height <= 0 {
		return 0
	}
	return ceilDiv(g.Width, g.Density) * ceilDiv(g.Height, g.Density)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
