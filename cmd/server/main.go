package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/carddb"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/config"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/room"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/server"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/storage"
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

	logger.Info("starting simulator server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	cards, err := carddb.Load(cfg.Cards.Path, logger)
	if err != nil {
		logger.Fatal("failed to load card database",
			zap.String("path", cfg.Cards.Path), zap.Error(err))
	}
	logger.Info("card database loaded",
		zap.String("path", cfg.Cards.Path),
		zap.Int("cards", cards.Size()),
	)

	var matches *storage.MatchRepository
	if cfg.Database.Enabled {
		matches, err = storage.Connect(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer matches.Close()
	} else {
		logger.Info("match persistence disabled")
	}

	engine := game.NewEngine(logger)
	logger.Info("game engine initialized")

	rooms := room.NewManager(cfg.Server.MaxRooms, logger)
	logger.Info("room manager initialized", zap.Int("max_rooms", cfg.Server.MaxRooms))

	srv := server.New(engine, rooms, cards, matches, logger)

	go srv.Hub().Run(ctx)

	// sweep rooms abandoned in the lobby
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := rooms.SweepIdle(cfg.Server.RoomIdleTimeout); n > 0 {
					logger.Info("swept idle rooms", zap.Int("count", n))
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
	}

	logger.Info("simulator server stopped")
}

// initLogger initializes the zap logger based on configuration
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
