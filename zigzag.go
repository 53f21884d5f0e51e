package glyphmosaic

import (
	"fmt"
	"image/color"
	"math"
)

// Direction is the horizontal drift of a zigzag run.
type Direction int

const (
	DriftLeft Direction = iota
	DriftRight
)

func (d Direction) String() string {
	if d == DriftRight {
		return "right"
	}
	return "left"
}

func (d Direction) sign() float64 {
	if d == DriftRight {
		return 1
	}
	return -1
}

func (d Direction) flip() Direction {
	if d == DriftRight {
		return DriftLeft
	}
	return DriftRight
}

// ZigzagOptions configures the background texture of binary strings.
type ZigzagOptions struct {
	FontSize   float64 `yaml:"font_size" toml:"font_size"`
	LineHeight float64 `yaml:"line_height" toml:"line_height"`
	// Baseline rotation in degrees. Must stay within (-90, 90).
	AngleDeg float64 `yaml:"angle_deg" toml:"angle_deg"`
	// Height reserved at the bottom of the bounds where no line starts.
	Margin float64 `yaml:"margin" toml:"margin"`
	// Largest horizontal drift reached at the end of a run.
	MaxOffset float64 `yaml:"max_offset" toml:"max_offset"`
	// Added to bounds.X for every line.
	InsetX float64 `yaml:"inset_x" toml:"inset_x"`
	// Run length is drawn from [MinPeriod, MaxPeriod) at the start of each run.
	MinPeriod int `yaml:"min_period" toml:"min_period"`
	MaxPeriod int `yaml:"max_period" toml:"max_period"`
	// String length is drawn from [MinLength, MaxLength) for every line.
	MinLength int     `yaml:"min_length" toml:"min_length"`
	MaxLength int     `yaml:"max_length" toml:"max_length"`
	Opacity   float64 `yaml:"opacity" toml:"opacity"`
	// Inset of the texture bounds from the top and bottom of the frame.
	Top    float64 `yaml:"top" toml:"top"`
	Bottom float64 `yaml:"bottom" toml:"bottom"`
}

func DefaultZigzagOptions() ZigzagOptions {
	return ZigzagOptions{
		FontSize:   28,
		LineHeight: 25,
		AngleDeg:   25,
		Margin:     100,
		MaxOffset:  60,
		InsetX:     -20,
		MinPeriod:  5,
		MaxPeriod:  7,
		MinLength:  15,
		MaxLength:  35,
		Opacity:    0.4,
		Top:        40,
		Bottom:     200,
	}
}

func (o ZigzagOptions) Validate() error {
	switch {
	case o.FontSize <= 0:
		return fmt.Errorf("%w: font size %v", ErrInvalidZigzag, o.FontSize)
	case o.LineHeight <= 0:
		return fmt.Errorf("%w: line height %v", ErrInvalidZigzag, o.LineHeight)
	case math.Abs(o.AngleDeg) >= 90:
		return fmt.Errorf("%w: angle %v", ErrInvalidZigzag, o.AngleDeg)
	case o.MaxOffset < 0:
		return fmt.Errorf("%w: max offset %v", ErrInvalidZigzag, o.MaxOffset)
	case o.MinPeriod < 1 || o.MaxPeriod <= o.MinPeriod:
		return fmt.Errorf("%w: period range [%d,%d)", ErrInvalidZigzag, o.MinPeriod, o.MaxPeriod)
	case o.MinLength < 0 || o.MaxLength <= o.MinLength:
		return fmt.Errorf("%w: length range [%d,%d)", ErrInvalidZigzag, o.MinLength, o.MaxLength)
	}
	return nil
}

func (o ZigzagOptions) angle() float64 {
	return o.AngleDeg * math.Pi / 180
}

// Spacing is the vertical distance between consecutive baselines.
func (o ZigzagOptions) Spacing() float64 {
	return o.LineHeight / math.Cos(o.angle())
}

// ZigzagLine is one planned string of the texture.
type ZigzagLine struct {
	Index     int
	Direction Direction
	// Signed drift from the run's starting column.
	Offset    float64
	RunLength int
	Content   string
	// Baseline origin before rotation.
	X, Y float64
}

// PlanZigzag lays out the texture lines for bounds. Lines form runs; within
// a run the drift grows linearly from 0 to MaxOffset, and the next run
// drifts the other way, so the left edge traces a sawtooth.
func PlanZigzag(bounds Region, opt ZigzagOptions, picker GlyphPicker, r Rand) ([]ZigzagLine, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if !bounds.Valid() {
		return nil, nil
	}
	spacing := opt.Spacing()
	n := int(math.Floor((bounds.Height - opt.Margin) / spacing))
	if n <= 0 {
		return nil, nil
	}

	lines := make([]ZigzagLine, 0, n)
	dir := DriftLeft
	period := rangeInt(r, opt.MinPeriod, opt.MaxPeriod)
	k := 0
	for i := range n {
		if k == period {
			dir = dir.flip()
			period = rangeInt(r, opt.MinPeriod, opt.MaxPeriod)
			k = 0
		}
		offset := 0.0
		if period > 1 {
			offset = dir.sign() * opt.MaxOffset * float64(k) / float64(period-1)
		}
		length := rangeInt(r, opt.MinLength, opt.MaxLength)
		lines = append(lines, ZigzagLine{
			Index:     i,
			Direction: dir,
			Offset:    offset,
			RunLength: period,
			Content:   picker.String(r, length),
			X:         bounds.X + opt.InsetX + offset,
			Y:         bounds.Y + float64(i)*spacing,
		})
		k++
	}
	return lines, nil
}

// DrawZigzag paints planned lines at reduced opacity and resets the global
// alpha to 1 afterwards.
func DrawZigzag(s Surface, lines []ZigzagLine, opt ZigzagOptions, col color.Color) {
	s.SetTextStyle(TextStyle{
		Family:   Monospace,
		Size:     opt.FontSize,
		Baseline: BaselineMiddle,
	})
	s.SetFillColor(col)
	s.SetGlobalAlpha(opt.Opacity)
	rot := opt.angle()
	for _, l := range lines {
		s.FillText(l.Content, Transform{X: l.X, Y: l.Y, Rotation: rot, ScaleX: 1, ScaleY: 1})
	}
	s.SetGlobalAlpha(1)
}
