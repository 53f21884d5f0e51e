package glyphmosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
)

// Stage is a step of a composition pass. Stages run in declaration order.
type Stage int

const (
	StageBackground Stage = iota
	StageZigzag
	StagePrimary
	StageTilted
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageBackground:
		return "background"
	case StageZigzag:
		return "zigzag"
	case StagePrimary:
		return "primary"
	case StageTilted:
		return "tilted"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Report describes one composition pass.
type Report struct {
	// Stage is StageDone after a complete frame, otherwise the stage that
	// failed.
	Stage Stage
	// Glyphs counts the glyphs drawn per stage. Zigzag counts lines.
	Glyphs [StageDone]int
	// Skipped lists layers that drew nothing because their region or
	// raster was empty.
	Skipped []Stage
}

// Total is the number of mosaic glyphs in the frame.
func (r Report) Total() int {
	return r.Glyphs[StagePrimary] + r.Glyphs[StageTilted]
}

type composition struct {
	s               Surface
	cfg             Config
	w, h            float64
	divider         Divider
	rng             Rand
	picker          GlyphPicker
	primary, tilted *RasterSource
}

// Render draws one frame onto s: background zones, zigzag texture, the
// primary mosaic, then the tilted mosaic. It runs synchronously. The first
// fatal error stops the pass; a layer with nothing to sample is skipped and
// the pass continues.
func Render(s Surface, cfg Config, primary, tilted *RasterSource) (Report, error) {
	rep := Report{Stage: StageBackground}
	if err := cfg.Validate(); err != nil {
		return rep, err
	}
	w, h := s.Size()
	c := &composition{
		s:       s,
		cfg:     cfg,
		w:       w,
		h:       h,
		divider: NewDivider(w, h, cfg.DividerDeg),
		rng:     NewRand(cfg.Seed),
		picker:  BinaryPicker(),
		primary: primary,
		tilted:  tilted,
	}

	stages := []struct {
		stage Stage
		run   func() (int, error)
	}{
		{StageBackground, c.background},
		{StageZigzag, c.zigzag},
		{StagePrimary, c.primaryMosaic},
		{StageTilted, c.tiltedMosaic},
	}
	log := Logger()
	for _, st := range stages {
		rep.Stage = st.stage
		log.Debug("stage start", "stage", st.stage)
		n, err := st.run()
		if errors.Is(err, ErrDegenerateRegion) {
			log.Warn("layer skipped", "stage", st.stage, "err", err)
			rep.Skipped = append(rep.Skipped, st.stage)
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("glyphmosaic: %s: %w", st.stage, err)
		}
		rep.Glyphs[st.stage] = n
		log.Debug("stage done", "stage", st.stage, "count", n)
	}
	rep.Stage = StageDone
	log.Info("frame rendered",
		slog.Float64("width", w),
		slog.Float64("height", h),
		slog.Int("glyphs", rep.Total()),
		slog.Int("zigzag_lines", rep.Glyphs[StageZigzag]),
	)
	return rep, nil
}

func (c *composition) background() (int, error) {
	pal := c.cfg.Palette.Zones()
	c.s.SetFillColor(pal.Background(ZoneB))
	c.s.FillRect(0, 0, c.w, c.h)

	c.s.SetFillColor(pal.Background(ZoneA))
	c.s.BeginPath()
	for i, p := range c.divider.Polygon(c.w, c.h) {
		if i == 0 {
			c.s.MoveTo(p.X, p.Y)
		} else {
			c.s.LineTo(p.X, p.Y)
		}
	}
	c.s.ClosePath()
	c.s.Fill()
	return 0, nil
}

// zigzagBounds covers the light side of the divider, measured at the frame
// center, inset from the top and bottom.
func (c *composition) zigzagBounds() Region {
	opt := c.cfg.Zigzag
	return Region{
		X:      0,
		Y:      opt.Top,
		Width:  c.divider.XAt(c.divider.CenterY),
		Height: c.h - opt.Top - opt.Bottom,
	}
}

func (c *composition) zigzag() (int, error) {
	lines, err := PlanZigzag(c.zigzagBounds(), c.cfg.Zigzag, c.picker, c.rng)
	if err != nil {
		return 0, err
	}
	DrawZigzag(c.s, lines, c.cfg.Zigzag, c.cfg.Palette.Texture)
	return len(lines), nil
}

func (c *composition) primaryMosaic() (int, error) {
	zones := c.cfg.Palette.Zones()
	m := Mosaic{
		Source:  c.primary,
		Region:  PlaceByHeight(c.w, c.h, c.primary, c.cfg.Primary),
		Options: c.cfg.Primary.MosaicOptions,
		Gate:    c.cfg.Gate,
		Picker:  c.picker,
		Color: func(x, y float64) color.Color {
			return zones.Glyph(c.divider.ZoneAt(x, y))
		},
	}
	return m.Draw(c.s, c.rng)
}

func (c *composition) tiltedMosaic() (int, error) {
	region := PlaceByWidth(c.w, c.h, c.tilted, c.cfg.Tilted)
	tilt := c.cfg.Tilted.Tilt
	light := c.cfg.Palette.Light
	m := Mosaic{
		Source:  c.tilted,
		Region:  region,
		Options: c.cfg.Tilted.MosaicOptions,
		Gate:    c.cfg.Gate,
		Picker:  c.picker,
		Color:   func(float64, float64) color.Color { return light },
		Place: func(col, row int) Transform {
			return TiltTransform(region, col, row, tilt)
		},
	}
	return m.Draw(c.s, c.rng)
}

// ============ FRAME ============

// Frame is a finished composition ready for export.
type Frame struct {
	Image         image.Image
	PixelsPerInch float64
	Report        Report
}

// Inches is the printed size of the frame at its pixel density.
func (f *Frame) Inches() (w, h float64) {
	b := f.Image.Bounds()
	return float64(b.Dx()) / f.PixelsPerInch, float64(b.Dy()) / f.PixelsPerInch
}

// Compose loads both sources named in cfg, waits for all of them, then
// renders a frame onto a new Canvas. A failed load returns before anything
// is drawn.
func Compose(ctx context.Context, cfg Config, loader Loader) (*Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	srcs, err := LoadAll(ctx, loader, cfg.Sources.Primary, cfg.Sources.Tilted)
	if err != nil {
		return nil, err
	}
	canvas := NewCanvas(cfg.Width, cfg.Height)
	rep, err := Render(canvas, cfg, srcs[0], srcs[1])
	if err != nil {
		return nil, err
	}
	return &Frame{
		Image:         canvas.Image(),
		PixelsPerInch: cfg.PixelsPerInch,
		Report:        rep,
	}, nil
}
