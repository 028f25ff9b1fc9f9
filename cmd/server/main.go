package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/duelforge/arena-server/internal/config"
	"github.com/duelforge/arena-server/internal/engine"
	"github.com/duelforge/arena-server/internal/server"
	"github.com/duelforge/arena-server/internal/store"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting arena server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	eng := engine.NewEngine(logger)
	eng.SetDefaultRules(engine.MatchRules{
		StartingHealth:   cfg.Game.StartingHealth,
		PlayerDefense:    cfg.Game.PlayerDefense,
		MaxResource:      cfg.Game.MaxResource,
		StartingResource: cfg.Game.StartingResource,
		StartingHand:     cfg.Game.StartingHand,
	})

	matchStore, err := store.New(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to match store", zap.Error(err))
	}
	if matchStore != nil {
		defer matchStore.Close()
		eng.SetStore(matchStore)
		recoverMatches(ctx, eng, matchStore, logger)
	} else {
		logger.Info("no database configured; matches are in-memory only")
	}

	srv := server.New(cfg.Server, eng, logger)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("arena server stopped")
}

// recoverMatches re-adopts every unfinished match from the store so play
// resumes across restarts.
func recoverMatches(ctx context.Context, eng *engine.Engine, matchStore *store.Store, logger *zap.Logger) {
	snapshots, err := matchStore.LoadUnfinished(ctx)
	if err != nil {
		logger.Error("failed to load persisted matches", zap.Error(err))
		return
	}
	recovered := 0
	for _, p := range snapshots {
		m, err := engine.RestoreMatch(p)
		if err != nil {
			logger.Warn("skipping unrecoverable match",
				zap.String("match_id", p.ID),
				zap.Error(err),
			)
			continue
		}
		if err := eng.AdoptMatch(m); err != nil {
			logger.Warn("failed to adopt match", zap.String("match_id", p.ID), zap.Error(err))
			continue
		}
		recovered++
	}
	if recovered > 0 {
		logger.Info("recovered persisted matches", zap.Int("count", recovered))
	}
}

// initLogger initializes the zap logger based on configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
