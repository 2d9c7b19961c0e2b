package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/dino-reserve/config"
	"github.com/yeremiapane/dino-reserve/database"
	"github.com/yeremiapane/dino-reserve/feed"
	"github.com/yeremiapane/dino-reserve/router"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := config.Load()
	if err := utils.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		utils.ErrorLogger.Fatalf("Failed to initialise logger: %v", err)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedOnStartup {
		if _, err := database.SeedReference(ctx, db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed restaurants: %v", err)
		}
	}

	hub := feed.NewHub()
	rdb := config.NewRedisClient(cfg)

	r := router.SetupRouter(db, router.Options{
		Config: cfg,
		Clock:  services.SystemClock(cfg.Location()),
		Hub:    hub,
		Redis:  rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.InfoLogger.Printf("%s %s listening on port %s", cfg.AppName, cfg.AppVersion, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		utils.InfoLogger.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Close()
		err := srv.Shutdown(shutdownCtx)
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		utils.ErrorLogger.Fatalf("Server error: %v", err)
	}
	utils.InfoLogger.Println("Server stopped")
}
