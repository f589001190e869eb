// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/api"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/cache"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/config"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/metrics"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/service"
	"github.com/andresuchdata/uniform-ledger/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	classifier, err := ledger.NewClassifier(cfg.Ledger.CriticalRatio, cfg.Ledger.ReorderBandRatio)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid classification policy")
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid ledger timezone")
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without cache")
		reportCache = cache.NewNoopReportCache()
	}

	m := metrics.New()
	inventoryService := service.NewInventoryService(
		postgres.NewInventoryRepository(db),
		reportCache,
		classifier,
		loc,
		m,
	)

	router := api.NewRouter(&api.Services{
		InventoryService: inventoryService,
		Metrics:          m,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
