package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/glyphmosaic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage(testPNG(t, 3, 2, color.Black))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	_, err = DecodeImage(nil)
	assert.Error(t, err)
	_, err = DecodeImage([]byte("hello, world"))
	assert.ErrorContains(t, err, "unrecognized")
	_, err = DecodeImage([]byte("%PDF-1.4\n%âãÏÓ\n"))
	assert.ErrorContains(t, err, "not an image")
	// Right magic, broken body.
	_, err = DecodeImage(testPNG(t, 3, 2, color.Black)[:40])
	assert.Error(t, err)
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mark.png")
	require.NoError(t, os.WriteFile(path, testPNG(t, 4, 3, color.NRGBA{10, 20, 30, 255}), 0o644))

	l := NewLoader()
	for _, loc := range []string{path, "file://" + path} {
		src, err := l.Load(context.Background(), loc)
		require.NoError(t, err, loc)
		assert.Equal(t, 4, src.Width())
		assert.Equal(t, 3, src.Height())
		assert.Equal(t, glyphmosaic.Pixel{R: 10, G: 20, B: 30, A: 255}, src.At(1, 1))
	}

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	var le *glyphmosaic.LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderHTTP(t *testing.T) {
	body := testPNG(t, 5, 5, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(body)
		case "/text":
			w.Write([]byte("plain text"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := &Loader{Client: srv.Client()}
	src, err := l.Load(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, 5, src.Width())

	for _, p := range []string{"/missing.png", "/text"} {
		_, err := l.Load(context.Background(), srv.URL+p)
		var le *glyphmosaic.LoadError
		require.ErrorAs(t, err, &le, p)
		assert.Equal(t, srv.URL+p, le.URL)
	}

	// Works as the pipeline's loader.
	out, err := glyphmosaic.LoadAll(context.Background(), l, srv.URL+"/ok.png", srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Len(t, out, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Load(ctx, srv.URL+"/ok.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	frame := &glyphmosaic.Frame{
		Image:         image.NewRGBA(image.Rect(0, 0, 12, 7)),
		PixelsPerInch: 300,
	}
	name := FrameName(filepath.Join(dir, "out", "frame.png"), frame)
	assert.Equal(t, filepath.Join(dir, "out", "frame-12x7@300ppi.png"), name)

	require.NoError(t, SaveImage(frame.Image, name))
	img, err := ReadImage(name)
	require.NoError(t, err)
	assert.Equal(t, frame.Image.Bounds(), img.Bounds())
}
