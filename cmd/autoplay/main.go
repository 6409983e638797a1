package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jwebster45206/vn-engine/internal/config"
	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/internal/host"
	"github.com/jwebster45206/vn-engine/internal/logger"
	"github.com/jwebster45206/vn-engine/internal/storage"
)

func main() {
	sceneFile := flag.String("scene", "", "scene file under the data dir's scenes/ directory (e.g. house_front.json)")
	frame := flag.Duration("frame", 16*time.Millisecond, "frame length")
	budget := flag.Duration("budget", 30*time.Minute, "simulated time allowed before giving up")
	refuse := flag.Bool("refuse", false, "answer no at the decision prompt")
	choice := flag.Int("choice", 1, "option picked at every choice point (1-based)")
	realtime := flag.Bool("realtime", false, "run on the wall clock instead of simulated frames")
	width := flag.Int("width", 80, "transcript wrap width")
	flag.Parse()

	if *sceneFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -scene <scene.json> [flags]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	library := storage.NewFileStorage(cfg.DataDir, log)
	sc, err := library.GetScene(ctx, *sceneFile)
	if err != nil {
		log.Error("Failed to load scene", "scene", *sceneFile, "error", err)
		os.Exit(1)
	}

	tr := &transcript{}
	engine, err := host.NewEngine(ctx, host.Deps{
		Config:   cfg,
		Library:  library,
		Logger:   log,
		Observer: dialogue.Observers{tr},
	})
	if err != nil {
		log.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}

	opts := runOptions{
		Frame:    *frame,
		Budget:   *budget,
		Refuse:   *refuse,
		Choice:   *choice,
		Realtime: *realtime,
		Width:    *width,
	}
	if err := run(ctx, engine, sc, tr, opts, os.Stdout); err != nil {
		log.Error("Autoplay failed", "scene", *sceneFile, "error", err)
		os.Exit(1)
	}
}
