package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"cliptrim/cmd/cliptrim/internal/theme"
	"cliptrim/cmd/cliptrim/internal/ui"
	"cliptrim/internal/config"
	"cliptrim/internal/ffmpeg"
	"cliptrim/internal/library"
	"cliptrim/internal/logging"
	"cliptrim/internal/media"
	"cliptrim/internal/mpris"
	"cliptrim/internal/player"
	"cliptrim/internal/selection"
	"cliptrim/internal/store"
	"cliptrim/internal/thumbs"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer log.Close()
	logging.SetDefault(log)

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Cliptrim"))
		w.Option(app.Size(unit.Dp(1100), unit.Dp(700)))

		if err := loop(w, cfg, log); err != nil {
			log.Error("window loop failed", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	lc := logging.DefaultConfig()
	if cfg.Logging.Level != "" {
		lvl, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		lc.Level = lvl
	}
	if cfg.Logging.Format != "" {
		f, err := logging.ParseFormat(cfg.Logging.Format)
		if err != nil {
			return nil, err
		}
		lc.Format = f
	}
	if cfg.Logging.Output != "" {
		lc.Output = cfg.Logging.Output
	}
	if cfg.Logging.FilePath != "" {
		lc.FilePath = cfg.Logging.FilePath
	}
	return logging.New(lc)
}

func loop(w *app.Window, cfg *config.Config, log *logging.Logger) error {
	t := theme.NewTheme(material.NewTheme())

	adapter := ffmpeg.New(cfg.Thumbnails.FFmpegPath, cfg.Thumbnails.FFprobePath)
	prober := media.NewProber(adapter, time.Duration(cfg.Probe.TimeoutSec)*time.Second, log)

	var cache thumbs.Cache
	var st *store.Store
	if cfg.Thumbnails.CacheEnabled {
		var err error
		st, err = store.Open(cfg.Storage.Path)
		if err != nil {
			log.Warn("session store unavailable", "path", cfg.Storage.Path, "error", err)
		} else {
			cache = st
			defer st.Close()
		}
	}
	gen := thumbs.NewGenerator(adapter, cache, log)

	lib, err := library.New(cfg.Library.SampleDirs, cfg.Library.Extensions, log)
	if err != nil {
		return fmt.Errorf("sample library: %w", err)
	}
	if err := lib.Start(); err != nil {
		return fmt.Errorf("start sample library: %w", err)
	}
	defer lib.Stop()
	go func() {
		for range lib.Events() {
			w.Invalidate()
		}
	}()

	model := selection.NewModel(selection.Policy{
		BaseMin:  cfg.Trimmer.BaseMinSec,
		BaseMax:  cfg.Trimmer.BaseMaxSec,
		BaseStep: cfg.Trimmer.BaseStepSec,
	})
	syncer := player.NewSynchronizer(player.NewClockPlayer(nil))

	if svc, err := mpris.Start(syncer, log); err != nil {
		log.Debug("media keys unavailable", "error", err)
	} else {
		defer svc.Close()
	}

	trimmer := ui.NewTrimmer(t, ui.Services{
		Config:     cfg,
		Library:    lib,
		Prober:     prober,
		Thumbs:     gen,
		Prefs:      st,
		Sync:       syncer,
		Model:      model,
		Log:        log,
		Invalidate: w.Invalidate,
	})
	defer trimmer.Close()

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			trimmer.Layout(gtx)

			e.Frame(gtx.Ops)
		}
	}
}
