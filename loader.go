package glyphmosaic

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Loader fetches and decodes one image.
type Loader interface {
	Load(ctx context.Context, url string) (*RasterSource, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, url string) (*RasterSource, error)

func (f LoaderFunc) Load(ctx context.Context, url string) (*RasterSource, error) {
	return f(ctx, url)
}

// LoadAll loads every url concurrently and returns the rasters in input
// order. The first failure cancels the remaining loads and is returned as
// a *LoadError; no partial result is returned.
func LoadAll(ctx context.Context, loader Loader, urls ...string) ([]*RasterSource, error) {
	out := make([]*RasterSource, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			if url == "" {
				return &LoadError{URL: url, Err: errors.New("empty location")}
			}
			src, err := loader.Load(ctx, url)
			if err != nil {
				var le *LoadError
				if errors.As(err, &le) {
					return err
				}
				return &LoadError{URL: url, Err: err}
			}
			if src == nil {
				return &LoadError{URL: url, Err: errors.New("loader returned no image")}
			}
			out[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
