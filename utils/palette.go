package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/glyphmosaic"
)

var ErrNoPalette = errors.New("utils: image has no usable colors")

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(s) {
	case "dominant", "dominantcolor":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return 0, fmt.Errorf("utils: unknown palette method %q", s)
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// DerivePalette picks three well-separated hues from img and assigns them
// by lightness: darkest to Dark, lightest to Light, the middle one to
// Texture.
func DerivePalette(img image.Image, method PaletteMethod) (glyphmosaic.Palette, error) {
	cols := ExtractPalette(img, 3, method)
	if len(cols) == 0 {
		return glyphmosaic.Palette{}, ErrNoPalette
	}
	SortByLightness(cols)
	dark, light := cols[0], cols[len(cols)-1]
	texture := dark
	if len(cols) == 3 {
		texture = cols[1]
	}
	return glyphmosaic.Palette{
		Light:   glyphmosaic.Color{Color: light},
		Dark:    glyphmosaic.Color{Color: dark},
		Texture: glyphmosaic.Color{Color: texture},
	}, nil
}

// SortByLightness orders colors from darkest to lightest by CIE L*.
func SortByLightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		la, _, _ := a.Lab()
		lb, _, _ := b.Lab()
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}

func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		if p := extractKMeans(img, k); len(p) != 0 {
			return p
		}
		glyphmosaic.Logger().Warn("kmeans returned an empty palette, falling back to dominantcolor")
		return extractDominant(img, k)
	default:
		return extractDominant(img, k)
	}
}

func extractDominant(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	found := dominantcolor.FindWeight(img, max(24, k*8))
	weighted := make([]weightedColor, 0, len(found))
	for _, c := range found {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: max(c.Weight, 1e-6)})
	}
	return selectDiverse(weighted, k)
}

func extractKMeans(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample large images; kmeans cost grows with every observation.
	const maxSamples = 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/maxSamples)) + 1
	}
	data := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A <= glyphmosaic.DefaultMinAlpha {
				continue
			}
			data = append(data, clusters.Coordinates{
				float64(c.R) / 255,
				float64(c.G) / 255,
				float64(c.B) / 255,
			})
		}
	}
	if len(data) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(data, min(max(k*4, k+2), len(data)))
	if err != nil || len(cc) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{col: col, weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse greedily picks k colors: the heaviest first, then whichever
// candidate is farthest in Lab from everything picked so far, biased toward
// heavier candidates.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	maxW := 0.0
	first := 0
	for i, c := range cands {
		if c.weight > maxW {
			maxW = c.weight
			first = i
		}
	}

	picked := []int{first}
	used := make([]bool, len(cands))
	used[first] = true
	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			nearest := math.MaxFloat64
			for _, j := range picked {
				nearest = min(nearest, c.col.DistanceLab(cands[j].col))
			}
			score := nearest * (0.55 + 0.45*math.Sqrt(c.weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, best)
	}

	out := make([]colorful.Color, len(picked))
	for i, j := range picked {
		out[i] = cands[j].col
	}
	return out
}

// SavePalette writes the palette as a strip of square swatches.
func SavePalette(p glyphmosaic.Palette, tileSize int, filename string) error {
	if tileSize <= 0 {
		tileSize = 64
	}
	swatches := []glyphmosaic.Color{p.Light, p.Dark, p.Texture}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(swatches), tileSize))
	for i, c := range swatches {
		r, g, b := c.Clamped().RGB255()
		fill := color.RGBA{R: r, G: g, B: b, A: 255}
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return SaveImage(img, filename)
}
