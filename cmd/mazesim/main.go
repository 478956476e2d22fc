// Package main provides the headless simulation binary: it loads a level,
// drives the combat loop at a fixed timestep with the autopilot player, and
// optionally serves the debug HTTP surface.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/config"
	"github.com/cory-johannsen/mazestrike/internal/debugserver"
	"github.com/cory-johannsen/mazestrike/internal/observability"
	"github.com/cory-johannsen/mazestrike/internal/server"
	"github.com/cory-johannsen/mazestrike/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/mazesim.yaml", "path to configuration file")
	levelPath := flag.String("level", "", "level YAML file; overrides simulation.level")
	duration := flag.Duration("duration", 0, "simulated time to run; overrides simulation.duration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *levelPath != "" {
		cfg.Simulation.Level = *levelPath
	}
	if *duration > 0 {
		cfg.Simulation.Duration = *duration
	}

	logger, level, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting simulation",
		zap.String("level", cfg.Simulation.Level),
		zap.Int("tick_rate", cfg.Simulation.TickRate),
		zap.Duration("duration", cfg.Simulation.Duration),
	)

	metrics := observability.NewMetrics()
	sink := sim.NewLogSink(logger)
	world, err := sim.Setup(cfg, logger, sim.Collaborators{
		Audio:    sink,
		Visual:   sink,
		Recorder: metrics,
	})
	if err != nil {
		logger.Fatal("building world", zap.Error(err))
	}
	defer world.Close()

	runner := sim.NewRunner(world.Loop, sim.RunnerOptions{
		Timestep: cfg.Simulation.Timestep(),
		Input:    sim.NewAutopilot(),
		Observer: metrics,
		Logger:   logger.Named("runner"),
		Duration: cfg.Simulation.Duration,
	})

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("simulation", runner)

	if cfg.Debug.Enabled {
		router := debugserver.NewRouter(debugserver.RouterConfig{
			State:          runner,
			Metrics:        metrics,
			Logger:         logger.Named("debug-http"),
			Frames:         runner,
			LogLevel:       level,
			StreamRate:     cfg.Debug.StreamRate,
			AllowedOrigins: cfg.Debug.AllowedOrigins,
		})
		dbg := debugserver.NewServer(cfg.Debug.Addr(), router, logger)
		if err := dbg.Listen(); err != nil {
			logger.Fatal("binding debug server", zap.Error(err))
		}
		logger.Info("debug server listening", zap.String("addr", dbg.Addr()))
		lifecycle.Add("debug-http", dbg)
	}

	logger.Info("simulation ready", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Error("simulation exited with error", zap.Error(err))
	}
}
