package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/glyphmosaic"
	"github.com/setanarut/glyphmosaic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if x < w/2 {
				img.Set(x, y, color.NRGBA{20, 30, 40, 255})
			} else {
				img.Set(x, y, color.NRGBA{230, 220, 200, 255})
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { glyphmosaic.SetLogger(nil) })
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderDryRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 16, 16)
	cfgPath := filepath.Join(dir, "frame.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("primary:\n  density: 6\ntilted:\n  density: 6\n"), 0o644))

	out, err := run(t, "render", "--dry-run", "-c", cfgPath,
		"--primary", src, "--tilted", src,
		"--width", "384", "--height", "216", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "seed 3\n")
	assert.Contains(t, out, "primary")
	assert.Contains(t, out, "tilted")
	assert.NotContains(t, out, "skipped")
}

func TestRenderWritesFrame(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 16, 16)
	dst := filepath.Join(dir, "out", "frame.png")

	_, err := run(t, "render", "--primary", src, "--tilted", src,
		"--width", "192", "--height", "108", "-o", dst, "--palette-from", "kmeans")
	require.NoError(t, err)
	img, err := utils.ReadImage(dst)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 192, 108), img.Bounds())
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "render", "--dry-run", "--primary", filepath.Join(dir, "none.png"), "--tilted", filepath.Join(dir, "none.png"))
	var le *glyphmosaic.LoadError
	assert.ErrorAs(t, err, &le)

	_, err = run(t, "render", "--dry-run", "-c", filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	_, err = run(t, "watch")
	assert.ErrorContains(t, err, "--config")
}

func TestBuildConfigRescalesKeepingFileValues(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "frame.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("seed = 11\ndivider_deg = 4.0\n[palette]\nlight = \"#eeeeee\"\n"), 0o644))

	cmd := newRenderCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-c", cfgPath, "--width", "1920", "--height", "1080"}))
	f := &renderFlags{}
	// Re-bind to read the parsed values.
	f.config, _ = cmd.Flags().GetString("config")
	f.width, _ = cmd.Flags().GetInt("width")
	f.height, _ = cmd.Flags().GetInt("height")

	cfg, err := buildConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, uint64(11), cfg.Seed)
	assert.Equal(t, 4.0, cfg.DividerDeg)
	assert.Equal(t, "#eeeeee", cfg.Palette.Light.Hex())
	assert.Equal(t, 14.0, cfg.Zigzag.FontSize)
}

func TestPaletteCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 20, 20)
	swatch := filepath.Join(dir, "swatch.png")

	out, err := run(t, "palette", src, "--method", "kmeans", "--swatch", swatch)
	require.NoError(t, err)
	assert.Contains(t, out, "light   #e6dcc8")
	assert.Contains(t, out, "dark    #141e28")
	_, err = os.Stat(swatch)
	assert.NoError(t, err)

	_, err = run(t, "palette", src, "--method", "octree")
	assert.Error(t, err)
}
