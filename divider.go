package glyphmosaic

import (
	"image/color"
	"math"
)

type Point struct {
	X, Y float64
}

// Zone names a side of the divider.
type Zone int

const (
	// ZoneB lies left of (or on) the divider.
	ZoneB Zone = iota
	// ZoneA lies strictly right of the divider.
	ZoneA
)

func (z Zone) String() string {
	if z == ZoneA {
		return "A"
	}
	return "B"
}

// Divider is a straight line through (CenterX, CenterY) tilted by Angle
// radians from vertical. Positive angles lean the top of the line right.
type Divider struct {
	Angle            float64
	CenterX, CenterY float64
}

// NewDivider returns a divider through the center of a width×height frame.
func NewDivider(width, height, angleDeg float64) Divider {
	return Divider{
		Angle:   angleDeg * math.Pi / 180,
		CenterX: width / 2,
		CenterY: height / 2,
	}
}

// XAt is the x coordinate of the divider at height y.
func (d Divider) XAt(y float64) float64 {
	return d.CenterX - (y-d.CenterY)*math.Tan(d.Angle)
}

func (d Divider) ZoneAt(x, y float64) Zone {
	if x > d.XAt(y) {
		return ZoneA
	}
	return ZoneB
}

// Polygon outlines the ZoneA part of a width×height frame. Its slanted edge
// comes from XAt so fills and ZoneAt agree on every row.
func (d Divider) Polygon(width, height float64) []Point {
	return []Point{
		{d.XAt(0), 0},
		{d.XAt(height), height},
		{width, height},
		{width, 0},
	}
}

// ZonePalette maps zones to their background and glyph colors.
type ZonePalette struct {
	BackgroundA, BackgroundB color.Color
	GlyphA, GlyphB           color.Color
}

func (p ZonePalette) Background(z Zone) color.Color {
	if z == ZoneA {
		return p.BackgroundA
	}
	return p.BackgroundB
}

func (p ZonePalette) Glyph(z Zone) color.Color {
	if z == ZoneA {
		return p.GlyphA
	}
	return p.GlyphB
}
