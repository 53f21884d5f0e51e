package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	"github.com/setanarut/glyphmosaic"

	// decoders
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes caps how much a Loader reads from one location.
const MaxImageBytes = 64 << 20

// Loader reads images from local paths, file:// URLs and http(s) URLs.
// Paths may start with ~.
type Loader struct {
	Client *http.Client
}

func NewLoader() *Loader {
	return &Loader{Client: http.DefaultClient}
}

func (l *Loader) Load(ctx context.Context, location string) (*glyphmosaic.RasterSource, error) {
	data, err := l.fetch(ctx, location)
	if err != nil {
		return nil, &glyphmosaic.LoadError{URL: location, Err: err}
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, &glyphmosaic.LoadError{URL: location, Err: err}
	}
	return glyphmosaic.RasterFromImage(img), nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.get(ctx, location)
		case "file":
			location = u.Path
		}
	}
	path, err := homedir.Expand(location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func (l *Loader) get(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxImageBytes)
	}
	return data, nil
}

// DecodeImage sniffs data and decodes it if it is a supported image.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		if kind == filetype.Unknown {
			return nil, errors.New("unrecognized image data")
		}
		return nil, fmt.Errorf("not an image: %s", kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ReadImage decodes the image at path.
func ReadImage(path string) (image.Image, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeImage(data)
}

// SaveImage writes img as PNG, creating parent directories as needed.
func SaveImage(img image.Image, filename string) error {
	filename, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FrameName returns "<base>-<w>x<h>@<ppi>ppi.png" for a frame.
func FrameName(base string, frame *glyphmosaic.Frame) string {
	b := frame.Image.Bounds()
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s-%dx%d@%gppi.png", base, b.Dx(), b.Dy(), frame.PixelsPerInch)
}
