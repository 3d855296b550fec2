package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/selene/internal/api"
	"github.com/terraincognita07/selene/internal/config"
	"github.com/terraincognita07/selene/internal/db"
	"github.com/terraincognita07/selene/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config init failed: %v", err)
	}

	zlog := logging.NewLogger(cfg.Debug, cfg.LogFile)
	defer func() {
		_ = zlog.Sync()
	}()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		zlog.Fatalw("database init failed", "error", err)
	}

	handler := api.NewHandler(database, cfg.SecretKey, zlog)

	app := fiber.New(fiber.Config{
		AppName:               "Selened",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zlog.Errorw("server shutdown failed", "error", err)
		}
	}()

	zlog.Infow("selened listening", "port", cfg.Port, "db", cfg.DBPath)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatalw("server exited", "error", err)
	}
}
