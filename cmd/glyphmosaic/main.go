package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/setanarut/glyphmosaic"
	"github.com/setanarut/glyphmosaic/utils"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	config      string
	primary     string
	tilted      string
	out         string
	seed        uint64
	width       int
	height      int
	dryRun      bool
	paletteFrom string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "glyphmosaic",
		Short: "Render images as binary glyph mosaics",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			glyphmosaic.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every stage")
	root.AddCommand(newRenderCmd(), newWatchCmd(), newPaletteCmd())
	return root
}

func addRenderFlags(cmd *cobra.Command, f *renderFlags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML or TOML config file")
	fl.StringVar(&f.primary, "primary", "", "image for the main mosaic")
	fl.StringVar(&f.tilted, "tilted", "", "image for the tilted mosaic")
	fl.StringVarP(&f.out, "out", "o", "frame.png", "output PNG")
	fl.Uint64Var(&f.seed, "seed", 0, "random seed (default: config seed, else current time)")
	fl.IntVar(&f.width, "width", 0, "frame width; rescales the default layout")
	fl.IntVar(&f.height, "height", 0, "frame height; rescales the default layout")
	fl.BoolVar(&f.dryRun, "dry-run", false, "count glyphs without rasterizing")
	fl.StringVar(&f.paletteFrom, "palette-from", "", "derive colors from the primary image: dominant or kmeans")
}

// buildConfig merges defaults, the config file and flags, in that order.
func buildConfig(cmd *cobra.Command, f *renderFlags) (glyphmosaic.Config, error) {
	cfg := glyphmosaic.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = glyphmosaic.LoadConfig(f.config); err != nil {
			return cfg, err
		}
	}
	if f.width > 0 || f.height > 0 {
		w, h := cfg.Width, cfg.Height
		if f.width > 0 {
			w = f.width
		}
		if f.height > 0 {
			h = f.height
		}
		scaled := glyphmosaic.ConfigFromSize(w, h)
		scaled.PixelsPerInch = cfg.PixelsPerInch
		scaled.Seed = cfg.Seed
		scaled.Sources = cfg.Sources
		scaled.Palette = cfg.Palette
		scaled.DividerDeg = cfg.DividerDeg
		scaled.Gate = cfg.Gate
		cfg = scaled
	}
	if f.primary != "" {
		cfg.Sources.Primary = f.primary
	}
	if f.tilted != "" {
		cfg.Sources.Tilted = f.tilted
	}
	switch {
	case cmd.Flags().Changed("seed"):
		cfg.Seed = f.seed
	case cfg.Seed == 0:
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	if f.paletteFrom != "" {
		method, err := utils.ParsePaletteMethod(f.paletteFrom)
		if err != nil {
			return cfg, err
		}
		img, err := utils.ReadImage(cfg.Sources.Primary)
		if err != nil {
			return cfg, &glyphmosaic.LoadError{URL: cfg.Sources.Primary, Err: err}
		}
		if cfg.Palette, err = utils.DerivePalette(img, method); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func render(ctx context.Context, cmd *cobra.Command, cfg glyphmosaic.Config, f *renderFlags) error {
	loader := utils.NewLoader()
	if f.dryRun {
		srcs, err := glyphmosaic.LoadAll(ctx, loader, cfg.Sources.Primary, cfg.Sources.Tilted)
		if err != nil {
			return err
		}
		rec := glyphmosaic.NewRecorder(float64(cfg.Width), float64(cfg.Height))
		rep, err := glyphmosaic.Render(rec, cfg, srcs[0], srcs[1])
		if err != nil {
			return err
		}
		printReport(cmd, cfg, rep)
		return nil
	}

	frame, err := glyphmosaic.Compose(ctx, cfg, loader)
	if err != nil {
		return err
	}
	if err := utils.SaveImage(frame.Image, f.out); err != nil {
		return err
	}
	w, h := frame.Inches()
	glyphmosaic.Logger().Info("frame written",
		"path", f.out,
		"seed", cfg.Seed,
		"inches", fmt.Sprintf("%.2fx%.2f", w, h),
	)
	printReport(cmd, cfg, frame.Report)
	return nil
}

func printReport(cmd *cobra.Command, cfg glyphmosaic.Config, rep glyphmosaic.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed %d\n", cfg.Seed)
	for s := glyphmosaic.StageBackground; s < glyphmosaic.StageDone; s++ {
		fmt.Fprintf(out, "%-10s %d\n", s, rep.Glyphs[s])
	}
	for _, s := range rep.Skipped {
		fmt.Fprintf(out, "skipped %s\n", s)
	}
}

func newRenderCmd() *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, f)
			if err != nil {
				return err
			}
			return render(cmd.Context(), cmd, cfg, f)
		},
	}
	addRenderFlags(cmd, f)
	return cmd
}

func newWatchCmd() *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render whenever the config file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.config == "" {
				return errors.New("watch needs --config")
			}
			cfg, err := buildConfig(cmd, f)
			if err != nil {
				return err
			}
			settings := glyphmosaic.NewSettings(cfg)
			if err := render(cmd.Context(), cmd, settings.Load(), f); err != nil {
				glyphmosaic.Logger().Error("render failed", "err", err)
			}
			return watch(cmd, f, settings)
		},
	}
	addRenderFlags(cmd, f)
	return cmd
}

func watch(cmd *cobra.Command, f *renderFlags, settings *glyphmosaic.Settings) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors often replace the file, so watch its directory.
	target, err := filepath.Abs(f.config)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	log := glyphmosaic.Logger()
	log.Info("watching", "config", target)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			cfg, err := buildConfig(cmd, f)
			if err != nil {
				log.Error("config rejected", "err", err)
				continue
			}
			if err := settings.Store(cfg); err != nil {
				log.Error("config rejected", "err", err)
				continue
			}
			if err := render(ctx, cmd, settings.Load(), f); err != nil {
				log.Error("render failed", "err", err)
			}
		}
	}
}

func newPaletteCmd() *cobra.Command {
	var method, swatch string
	cmd := &cobra.Command{
		Use:   "palette IMAGE",
		Short: "Print the palette derived from an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := utils.ParsePaletteMethod(method)
			if err != nil {
				return err
			}
			img, err := utils.ReadImage(args[0])
			if err != nil {
				return err
			}
			p, err := utils.DerivePalette(img, m)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "light   %s\ndark    %s\ntexture %s\n", p.Light.Hex(), p.Dark.Hex(), p.Texture.Hex())
			if swatch != "" {
				return utils.SavePalette(p, 64, swatch)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "dominant", "dominant or kmeans")
	cmd.Flags().StringVar(&swatch, "swatch", "", "also write a PNG swatch strip")
	return cmd
}
