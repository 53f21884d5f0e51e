package glyphmosaic

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform places a glyph: translate to (X, Y), rotate by Rotation
// radians, then scale by (ScaleX, ScaleY). The glyph is drawn at the local
// origin. A Transform is a plain value; surfaces apply it to one draw call
// and discard it, so nothing carries over to the next glyph.
type Transform struct {
	X, Y           float64
	Rotation       float64
	ScaleX, ScaleY float64
}

// Translation is the identity transform moved to (x, y).
func Translation(x, y float64) Transform {
	return Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}
}

// Matrix returns the 3×3 homogeneous matrix T·R·S.
func (t Transform) Matrix() *mat.Dense {
	sin, cos := math.Sincos(t.Rotation)
	tr := mat.NewDense(3, 3, []float64{
		1, 0, t.X,
		0, 1, t.Y,
		0, 0, 1,
	})
	rot := mat.NewDense(3, 3, []float64{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	})
	scale := mat.NewDense(3, 3, []float64{
		t.ScaleX, 0, 0,
		0, t.ScaleY, 0,
		0, 0, 1,
	})
	var tmp, out mat.Dense
	tmp.Mul(tr, rot)
	out.Mul(&tmp, scale)
	return &out
}

// Apply maps a local point into frame coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return applyMatrix(t.Matrix(), x, y)
}

func applyMatrix(m mat.Matrix, x, y float64) (float64, float64) {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{x, y, 1}))
	return out.AtVec(0), out.AtVec(1)
}

// TiltOptions configures the pseudo-3D glyph transform.
type TiltOptions struct {
	// Rotation of every glyph, in degrees.
	TiltDeg float64 `yaml:"tilt_deg" toml:"tilt_deg"`
	// Horizontal shift reached at the bottom row of the region. Rows in
	// between shift proportionally to their normalized height.
	SkewX float64 `yaml:"skew_x" toml:"skew_x"`
	// Per-glyph scale; ScaleY < 1 flattens glyphs.
	ScaleX float64 `yaml:"scale_x" toml:"scale_x"`
	ScaleY float64 `yaml:"scale_y" toml:"scale_y"`
}

func DefaultTiltOptions() TiltOptions {
	return TiltOptions{TiltDeg: -15, SkewX: -90, ScaleX: 1, ScaleY: 0.8}
}

// TiltTransform computes the transform of the glyph sampled at (col, row)
// of region. It depends only on its arguments.
func TiltTransform(region Region, col, row int, opt TiltOptions) Transform {
	normalizedRow := 0.0
	if region.Height > 0 {
		normalizedRow = float64(row) / region.Height
	}
	offset := normalizedRow * opt.SkewX
	return Transform{
		X:        region.X + float64(col) + offset,
		Y:        region.Y + float64(row),
		Rotation: opt.TiltDeg * math.Pi / 180,
		ScaleX:   opt.ScaleX,
		ScaleY:   opt.ScaleY,
	}
}
