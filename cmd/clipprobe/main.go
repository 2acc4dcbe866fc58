// Command clipprobe exercises the trimmer's media pipeline headless:
// it probes source durations and renders thumbnail strips to disk.
package main

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cliptrim/internal/config"
	"cliptrim/internal/ffmpeg"
	"cliptrim/internal/logging"
	"cliptrim/internal/media"
	"cliptrim/internal/thumbs"
)

func main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "clipprobe",
		Short:        "Probe media sources and generate thumbnail strips",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "Path to config file")
	root.PersistentFlags().Float64("hint", 0, "Duration hint in seconds for sources without metadata")

	duration := &cobra.Command{
		Use:   "duration <source>",
		Short: "Print the probed duration and aspect ratio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDuration(cmd, args[0])
		},
	}

	strip := &cobra.Command{
		Use:   "thumbs <source>",
		Short: "Render the thumbnail strip to an output directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThumbs(cmd, args[0])
		},
	}
	strip.Flags().String("out", "thumbs", "Output directory")
	strip.Flags().Int("width", 960, "Display width in pixels the strip is sized for")

	root.AddCommand(duration, strip)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) (*config.Config, *ffmpeg.Adapter, *logging.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(logging.DefaultConfig())
	if err != nil {
		return nil, nil, nil, err
	}

	ffmpegPath := getenvDefault("CLIPTRIM_FFMPEG", cfg.Thumbnails.FFmpegPath)
	ffprobePath := getenvDefault("CLIPTRIM_FFPROBE", cfg.Thumbnails.FFprobePath)
	return cfg, ffmpeg.New(ffmpegPath, ffprobePath), log, nil
}

func openSource(ctx context.Context, cmd *cobra.Command, raw string) (*media.Source, error) {
	hint, _ := cmd.Flags().GetFloat64("hint")

	kind := media.KindSample
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		kind = media.KindUpload
	}
	src := &media.Source{Kind: kind, URL: raw, DurationHint: hint}
	if err := src.Resolve(ctx, nil); err != nil {
		return nil, err
	}
	return src, nil
}

func runDuration(cmd *cobra.Command, raw string) error {
	cfg, adapter, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	src, err := openSource(ctx, cmd, raw)
	if err != nil {
		return err
	}
	defer src.Close()

	prober := media.NewProber(adapter, time.Duration(cfg.Probe.TimeoutSec)*time.Second, log)
	probed, err := prober.Probe(ctx, src)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "duration: %.3fs\naspect:   %.4f\n", probed.Seconds, probed.AspectRatio)
	return nil
}

func runThumbs(cmd *cobra.Command, raw string) error {
	cfg, adapter, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	outDir, _ := cmd.Flags().GetString("out")
	width, _ := cmd.Flags().GetInt("width")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	src, err := openSource(ctx, cmd, raw)
	if err != nil {
		return err
	}
	defer src.Close()

	prober := media.NewProber(adapter, time.Duration(cfg.Probe.TimeoutSec)*time.Second, log)
	probed, err := prober.Probe(ctx, src)
	if err != nil {
		return err
	}

	gen := thumbs.NewGenerator(adapter, nil, log)
	strip, err := gen.Generate(ctx, src, probed, width)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for i, img := range strip.Images {
		name := filepath.Join(outDir, fmt.Sprintf("thumb_%03d.png", i))
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tiles (%dx%d) to %s\n",
		len(strip.Images), strip.TileWidth, strip.TileHeight, outDir)
	return nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
