package glyphmosaic

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Color is a colorful.Color that reads and writes as a hex string.
type Color struct {
	colorful.Color
}

func Hex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q: %v", ErrInvalidConfig, s, err)
	}
	return Color{c}, nil
}

func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := Hex(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Palette holds the three hues of a frame.
type Palette struct {
	// Background left of the divider; glyph color right of it.
	Light Color `yaml:"light" toml:"light"`
	// Background right of the divider; glyph color left of it.
	Dark Color `yaml:"dark" toml:"dark"`
	// Zigzag texture strings.
	Texture Color `yaml:"texture" toml:"texture"`
}

func DefaultPalette() Palette {
	return Palette{
		Light:   MustHex("#ffffff"),
		Dark:    MustHex("#000000"),
		Texture: MustHex("#000000"),
	}
}

// Zones maps the palette onto divider zones.
func (p Palette) Zones() ZonePalette {
	return ZonePalette{
		BackgroundA: p.Dark,
		BackgroundB: p.Light,
		GlyphA:      p.Light,
		GlyphB:      p.Dark,
	}
}

// Sources name the images a frame is built from. Any location the Loader
// understands is accepted.
type Sources struct {
	Primary string `yaml:"primary" toml:"primary"`
	Tilted  string `yaml:"tilted" toml:"tilted"`
}

// Config is everything one frame needs. It is a value: the pipeline never
// mutates it, and a new frame reads whatever Config it is handed.
type Config struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
	// Output pixel density, carried to the exported frame.
	PixelsPerInch float64 `yaml:"pixels_per_inch" toml:"pixels_per_inch"`
	// Seed of the frame's random generator.
	Seed    uint64  `yaml:"seed" toml:"seed"`
	Sources Sources `yaml:"sources" toml:"sources"`
	Palette Palette `yaml:"palette" toml:"palette"`
	// Divider tilt in degrees.
	DividerDeg float64        `yaml:"divider_deg" toml:"divider_deg"`
	Gate       LuminanceGate  `yaml:"gate" toml:"gate"`
	Zigzag     ZigzagOptions  `yaml:"zigzag" toml:"zigzag"`
	Primary    PrimaryOptions `yaml:"primary" toml:"primary"`
	Tilted     TiltedOptions  `yaml:"tilted" toml:"tilted"`
}

const (
	DefaultWidth  = 3840
	DefaultHeight = 2160
)

func DefaultConfig() Config {
	return Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		PixelsPerInch: 300,
		Palette:       DefaultPalette(),
		DividerDeg:    10,
		Gate:          DefaultGate(),
		Zigzag:        DefaultZigzagOptions(),
		Primary:       DefaultPrimaryOptions(),
		Tilted:        DefaultTiltedOptions(),
	}
}

// ConfigFromSize scales the default layout, which is tuned for a
// 3840-pixel-wide frame, to a width×height frame.
func ConfigFromSize(width, height int) Config {
	cfg := DefaultConfig()
	if width <= 0 || height <= 0 {
		return cfg
	}
	cfg.Width, cfg.Height = width, height
	k := float64(width) / DefaultWidth
	if k == 1 {
		return cfg
	}
	scaleDensity := func(d int) int {
		return max(1, int(math.Round(float64(d)*k)))
	}
	z := &cfg.Zigzag
	z.FontSize *= k
	z.LineHeight *= k
	z.Margin *= k
	z.MaxOffset *= k
	z.InsetX *= k
	z.Top *= k
	z.Bottom *= k
	cfg.Primary.Density = scaleDensity(cfg.Primary.Density)
	cfg.Primary.ShiftX *= k
	cfg.Tilted.Density = scaleDensity(cfg.Tilted.Density)
	cfg.Tilted.OffsetX *= k
	cfg.Tilted.OffsetY *= k
	cfg.Tilted.Tilt.SkewX *= k
	return cfg
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: frame %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.PixelsPerInch <= 0:
		return fmt.Errorf("%w: pixels per inch %v", ErrInvalidConfig, c.PixelsPerInch)
	case math.Abs(c.DividerDeg) >= 90:
		return fmt.Errorf("%w: divider angle %v", ErrInvalidConfig, c.DividerDeg)
	}
	if c.Primary.Density < 1 {
		return fmt.Errorf("primary: %w: got %d", ErrInvalidDensity, c.Primary.Density)
	}
	if c.Tilted.Density < 1 {
		return fmt.Errorf("tilted: %w: got %d", ErrInvalidDensity, c.Tilted.Density)
	}
	opacities := []struct {
		layer string
		value float64
	}{
		{"zigzag", c.Zigzag.Opacity},
		{"primary", c.Primary.Opacity},
		{"tilted", c.Tilted.Opacity},
	}
	for _, o := range opacities {
		if o.value < 0 || o.value > 1 {
			return fmt.Errorf("%w: %s opacity %v", ErrInvalidConfig, o.layer, o.value)
		}
	}
	return c.Zigzag.Validate()
}

// ParseConfig overlays YAML or TOML data onto DefaultConfig. format is a
// file extension such as ".yaml" or ".toml".
func ParseConfig(data []byte, format string) (Config, error) {
	cfg := DefaultConfig()
	var err error
	switch strings.ToLower(format) {
	case ".yaml", ".yml", "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case ".toml", "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return Config{}, fmt.Errorf("%w: unknown config format %q", ErrInvalidConfig, format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a .yaml, .yml or .toml file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data, filepath.Ext(path))
}

// ============ LIVE SETTINGS ============

// Settings holds the configuration a control surface may replace between
// frames. Each frame takes one snapshot with Load; updates never touch a
// Config already handed out.
type Settings struct {
	p atomic.Pointer[Config]
}

func NewSettings(cfg Config) *Settings {
	s := &Settings{}
	s.p.Store(&cfg)
	return s
}

func (s *Settings) Load() Config {
	return *s.p.Load()
}

// Store validates cfg and makes it the current configuration.
func (s *Settings) Store(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.p.Store(&cfg)
	return nil
}
