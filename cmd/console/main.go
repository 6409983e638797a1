package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/vn-engine/internal/config"
	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/internal/host"
	"github.com/jwebster45206/vn-engine/internal/logger"
	"github.com/jwebster45206/vn-engine/internal/observability"
	"github.com/jwebster45206/vn-engine/internal/services"
	"github.com/jwebster45206/vn-engine/internal/services/events"
	"github.com/jwebster45206/vn-engine/internal/storage"
)

const defaultLogFile = "vn-console.log"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the TUI, so logs always go to a file.
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = defaultLogFile
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", logPath, err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.Setup(cfg, logFile)
	log.Info("Starting console", "data_dir", cfg.DataDir, "rating", cfg.ContentRating)

	ctx := context.Background()

	tp, err := observability.InitTracing(ctx, observability.ConfigFrom(cfg, "vn-console"))
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to initialize tracing: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down tracing", "error", err)
		}
	}()

	bl := &backlog{}
	observers := dialogue.Observers{bl}
	var cache services.Cache = services.NewMemoryCache()

	if cfg.RedisURL != "" {
		if redisSvc, err := connectRedis(ctx, cfg.RedisURL, log); err != nil {
			log.Warn("Redis unavailable, events disabled and progress kept in memory", "error", err)
		} else {
			defer func() {
				_ = redisSvc.Close()
			}()
			cache = redisSvc
			observers = append(observers, events.NewBroadcaster(redisSvc.GetClient(), log))
		}
	}

	library := storage.NewFileStorage(cfg.DataDir, log)
	engine, err := host.NewEngine(ctx, host.Deps{
		Config:     cfg,
		Library:    library,
		Logger:     log,
		Observer:   observers,
		Tracer:     tp.GetTracer("vn-engine/dialogue"),
		RevealRate: cfg.RevealRate,
	})
	if err != nil {
		log.Error("Failed to build engine", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	ui := NewConsoleUI(ctx, cfg, engine, library, services.NewGallery(cache, log), bl, log)
	p := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("Console exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func connectRedis(ctx context.Context, url string, log *slog.Logger) (*services.RedisService, error) {
	svc, err := services.NewRedisService(url, log)
	if err != nil {
		return nil, err
	}
	svc.SetRetryPolicy(3, 500*time.Millisecond)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := svc.WaitForConnection(waitCtx); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}
