// slimcircle is the weekly weigh-in competition service: check-in
// submission, the weekly settlement engine and the read-side boards.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminapi "github.com/slimcircle/slimcircle/internal/api/admin"
	boardapi "github.com/slimcircle/slimcircle/internal/api/board"
	checkinapi "github.com/slimcircle/slimcircle/internal/api/checkin"
	"github.com/slimcircle/slimcircle/internal/cache"
	"github.com/slimcircle/slimcircle/internal/config"
	"github.com/slimcircle/slimcircle/internal/repository"
	"github.com/slimcircle/slimcircle/internal/service/board"
	"github.com/slimcircle/slimcircle/internal/service/checkin"
	"github.com/slimcircle/slimcircle/internal/service/scheduler"
	"github.com/slimcircle/slimcircle/internal/service/settlement"
	"github.com/slimcircle/slimcircle/internal/week"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info().Str("environment", cfg.Server.Environment).Msg("Starting slimcircle")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Service exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	// Database
	if err := repository.RunMigrations(&cfg.Database.Postgres, log); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	// Redis read cache
	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	defer func() {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}()

	// Reference calendar and clock
	location, err := cfg.CheckIn.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid check-in timezone: %w", err)
	}
	cal := week.NewCalendar(location, cfg.CheckIn.CloseHour)
	clock := week.SystemClock()

	// Repositories
	checkInRepo := repository.NewCheckInRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	certRepo := repository.NewCertConfigRepository(db)

	// Services
	settlementService := settlement.NewService(cal, clock, checkInRepo, rewardRepo, log)
	checkinService := checkin.NewService(cal, clock, checkInRepo, cfg.CheckIn.MinWeight, cfg.CheckIn.MaxWeight, log)
	cacheTTL := time.Duration(cfg.Database.Redis.CacheTTL) * time.Second
	boardService := board.NewService(cal, rewardRepo, certRepo, redisCache, cacheTTL, log)

	// Weekly settlement scheduler
	sched := scheduler.NewService(cfg, settlementService, boardService, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("scheduler failed to start: %w", err)
	}
	defer sched.Stop()

	// HTTP API
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Prometheus.Enabled {
		router.GET(cfg.Metrics.Prometheus.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	checkinapi.NewHandler(checkinService, log).RegisterRoutes(v1)
	boardapi.NewHandler(boardService, cal, clock, log).RegisterRoutes(v1)
	adminapi.NewHandler(settlementService, boardService, certRepo, cfg.Admin.Secret, log).RegisterRoutes(v1)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	log.Info().Msg("Shutdown complete")
	return nil
}
