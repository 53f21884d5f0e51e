package glyphmosaic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuminanceGate(t *testing.T) {
	gate := DefaultGate()
	tests := []struct {
		name string
		p    Pixel
		want bool
	}{
		{"opaque black", Pixel{0, 0, 0, 255}, true},
		{"opaque white", Pixel{255, 255, 255, 255}, false},
		{"transparent black", Pixel{0, 0, 0, 0}, false},
		{"alpha at threshold", Pixel{0, 0, 0, 128}, false},
		{"alpha above threshold", Pixel{0, 0, 0, 129}, true},
		{"brightness at threshold", Pixel{200, 200, 200, 255}, false},
		{"brightness just below", Pixel{199, 200, 200, 255}, true},
		{"saturated red", Pixel{255, 0, 0, 255}, true},
		{"light yellow", Pixel{255, 255, 100, 255}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Eligible(tt.p))
		})
	}
}

func TestLuminanceGateExclusion(t *testing.T) {
	gate := DefaultGate()
	for a := 0; a < 256; a += 17 {
		for v := 0; v < 256; v += 15 {
			p := Pixel{uint8(v), uint8(v), uint8(v), uint8(a)}
			if a <= 128 || p.Brightness() >= 200 {
				assert.False(t, gate.Eligible(p), "%+v", p)
			}
		}
	}
}

func TestLuminanceGateCustom(t *testing.T) {
	gate := LuminanceGate{MinAlpha: 0, MaxBrightness: 256}
	assert.True(t, gate.Eligible(Pixel{255, 255, 255, 1}))
	assert.False(t, gate.Eligible(Pixel{255, 255, 255, 0}))
}
