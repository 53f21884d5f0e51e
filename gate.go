package glyphmosaic

const (
	DefaultMinAlpha      = 128
	DefaultMaxBrightness = 200
)

// LuminanceGate decides whether a sampled pixel carries a glyph. It keeps
// opaque, dark pixels and drops transparent or near-white background.
type LuminanceGate struct {
	// Pixels must be strictly more opaque than this.
	MinAlpha uint8 `yaml:"min_alpha" toml:"min_alpha"`
	// Pixels must be strictly darker than this channel mean.
	MaxBrightness float64 `yaml:"max_brightness" toml:"max_brightness"`
}

func DefaultGate() LuminanceGate {
	return LuminanceGate{MinAlpha: DefaultMinAlpha, MaxBrightness: DefaultMaxBrightness}
}

func (g LuminanceGate) Eligible(p Pixel) bool {
	return p.A > g.MinAlpha && p.Brightness() < g.MaxBrightness
}
