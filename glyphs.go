package glyphmosaic

import (
	"math/rand/v2"
	"strings"
)

// Rand is the randomness the layers depend on. *rand.Rand satisfies it.
type Rand interface {
	// IntN returns a value in [0,n). It panics if n <= 0.
	IntN(n int) int
	// Float64 returns a value in [0.0,1.0).
	Float64() float64
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// rangeInt draws uniformly from [lo,hi). hi <= lo yields lo.
func rangeInt(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo)
}

var binaryAlphabet = []string{"0", "1"}

// GlyphPicker draws symbols uniformly from an alphabet.
type GlyphPicker struct {
	Alphabet []string
}

func BinaryPicker() GlyphPicker {
	return GlyphPicker{Alphabet: binaryAlphabet}
}

func (p GlyphPicker) Pick(r Rand) string {
	alphabet := p.Alphabet
	if len(alphabet) == 0 {
		alphabet = binaryAlphabet
	}
	return alphabet[r.IntN(len(alphabet))]
}

// String concatenates n independent picks.
func (p GlyphPicker) String(r Rand, n int) string {
	var sb strings.Builder
	for range n {
		sb.WriteString(p.Pick(r))
	}
	return sb.String()
}
