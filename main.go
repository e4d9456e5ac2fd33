package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eligibility/config"
	"eligibility/db"
	ehttp "eligibility/http"
	"eligibility/logging"
	"eligibility/ml"
	"eligibility/monitoring"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Load model artifacts
	scorer, err := ml.LoadArtifacts(ml.ArtifactConfig{
		ModelType:  cfg.Model.Type,
		ModelPath:  cfg.Model.Path,
		ScalerPath: cfg.Model.ScalerPath,
	})
	if err != nil {
		logger.Fatal("failed to load model artifacts", zap.Error(err))
	}
	logger.Info("model loaded", zap.String("type", cfg.Model.Type), zap.String("path", cfg.Model.Path))

	// 4. Connect store
	store, err := db.Open(ctx, db.Options{
		Type:            cfg.Store.Type,
		Timeout:         cfg.Store.Timeout,
		MongoURI:        cfg.Store.Mongo.URI,
		MongoDatabase:   cfg.Store.Mongo.Database,
		MongoCollection: cfg.Store.Mongo.Collection,
		SQLitePath:      cfg.Store.SQLite.Path,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect store", zap.String("type", cfg.Store.Type), zap.Error(err))
	}

	// 5. Start prediction feed and config watcher
	serverCfg := ehttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}
	var publisher ehttp.Publisher
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	if cfg.Feed.Enabled {
		feed := monitoring.NewFeed(logger)
		go feed.Run(feedCtx)
		publisher = feed
		serverCfg.Feed = feed
	}
	if cfg.Metrics.Enabled {
		serverCfg.Metrics = monitoring.Handler()
	}

	if _, err := os.Stat(*configPath); err == nil {
		go func() {
			if err := logging.WatchLevel(ctx, *configPath, level, logger); err != nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 6. Start HTTP server
	server := ehttp.NewServer(serverCfg, ehttp.NewHandler(scorer, store, publisher, logger), logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 7. Handle graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	stopFeed()
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn("store close failed", zap.Error(err))
	}

	logger.Info("exiting")
}
