package glyphmosaic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDensity is returned when a sampling stride is below 1.
	ErrInvalidDensity = errors.New("glyphmosaic: density must be >= 1")
	// ErrDegenerateRegion marks a layer whose region or raster has no area.
	// Layers report it, the pipeline treats it as "nothing to draw".
	ErrDegenerateRegion = errors.New("glyphmosaic: degenerate region")
	ErrInvalidZigzag    = errors.New("glyphmosaic: invalid zigzag options")
	ErrInvalidConfig    = errors.New("glyphmosaic: invalid config")
)

// LoadError reports a source image that could not be fetched or decoded.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("glyphmosaic: load %q: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
