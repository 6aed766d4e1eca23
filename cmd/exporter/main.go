package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"scene-exporter/internal/common/config"
	"scene-exporter/internal/common/middleware"
	"scene-exporter/internal/exporter/handlers"
	"scene-exporter/internal/exporter/mapper"
	"scene-exporter/internal/exporter/metrics"
	"scene-exporter/internal/exporter/repository"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Exporter Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Environment == "production" {
		log.SetLevel(log.LevelInfo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Пустой EXPORT_DB_PATH отключает хранилище
	var store handlers.Store
	var ready handlers.Pinger
	if cfg.Storage.DBPath != "" {
		db, err := repository.OpenSQLite(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()

		repo := repository.New(db)
		if err := repo.Init(ctx); err != nil {
			log.Fatalf("init db: %v", err)
		}
		store, ready = repo, repo
	}

	m := metrics.New()
	exportHandler, err := handlers.NewExportHandler(mapper.Options{
		Precision: cfg.Export.Precision,
		Epsilon:   cfg.Export.Epsilon,
		MaxDepth:  cfg.Export.MaxDepth,
		Parallel:  cfg.Export.Parallel,
	}, store, cfg.Storage.CacheSize, m)
	if err != nil {
		log.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Export.MaxBody,
		AppName:      "Scene Exporter",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.Environment, cfg.AllowOrigins))

	handlers.Register(app, exportHandler, m, ready)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		<-ctx.Done()
		log.Info("Shutting down Scene Exporter")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("Starting Scene Exporter on %s (env: %s, storage: %t)", addr, cfg.Environment, store != nil)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
