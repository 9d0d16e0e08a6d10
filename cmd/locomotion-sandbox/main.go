package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep/speaker"

	"github.com/zeusync/locomotion/internal/config"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/injector"
	"github.com/zeusync/locomotion/internal/sandbox"
	"github.com/zeusync/locomotion/pkg/concurrent"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $"+config.EnvConfigPath+")")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "locomotion-sandbox:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	rt, cleanup, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := rt.Logger

	if rt.Player != nil {
		rate := rt.Player.SampleRate()
		if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
			// no audio device: keep running silently
			logger.Warn("audio disabled", log.Error(err))
		} else {
			speaker.Play(rt.Player.Streamer())
			defer speaker.Close()
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err = screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	opts := sandbox.Options{
		TickInterval:    cfg.Sandbox.TickInterval(),
		WaypointSpacing: cfg.Sandbox.WaypointSpacing,
		Logger:          logger,
	}
	if rt.Feed != nil {
		opts.Publisher = rt.Feed
	}
	app := sandbox.NewApp(screen, sandbox.NewView(screen, rt.Mesh, cfg.Navigation.Zone), rt.World, rt.Keyboard, rt.Controller, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loops := []func(context.Context) error{
		func(ctx context.Context) error {
			defer cancel()
			return app.Run(ctx)
		},
	}
	if rt.Feed != nil {
		loops = append(loops, func(ctx context.Context) error {
			return rt.Feed.ListenAndServe(ctx, cfg.Feed.Addr)
		})
	}

	logger.Info("sandbox started",
		log.String("zone", cfg.Navigation.Zone),
		log.Duration("tick", cfg.Sandbox.TickInterval()),
		log.Bool("feed", rt.Feed != nil),
		log.Bool("audio", rt.Player != nil),
	)
	err = concurrent.Run(ctx, loops...)
	logger.Info("sandbox stopped", log.Uint64("frames", rt.Controller.Frame().Seq))
	return err
}
