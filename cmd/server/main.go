package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beautypk/photo-arena/internal/api/arena"
	"github.com/beautypk/photo-arena/internal/api/dashboard"
	energyapi "github.com/beautypk/photo-arena/internal/api/energy"
	photosapi "github.com/beautypk/photo-arena/internal/api/photos"
	"github.com/beautypk/photo-arena/internal/cache"
	"github.com/beautypk/photo-arena/internal/config"
	"github.com/beautypk/photo-arena/internal/notify"
	"github.com/beautypk/photo-arena/internal/repository"
	"github.com/beautypk/photo-arena/internal/service/achievements"
	energysvc "github.com/beautypk/photo-arena/internal/service/energy"
	"github.com/beautypk/photo-arena/internal/service/leaderboard"
	"github.com/beautypk/photo-arena/internal/service/match"
	photossvc "github.com/beautypk/photo-arena/internal/service/photos"
	"github.com/beautypk/photo-arena/internal/service/scheduler"
	"github.com/beautypk/photo-arena/internal/service/vote"
	"github.com/beautypk/photo-arena/pkg/logger"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()
	log.Info().Str("environment", cfg.Server.Environment).Msg("Starting photo arena service")

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	sessions, err := cache.NewSessionStore(&cfg.Database.Redis, cfg.Matchmaking.SessionDuration(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer sessions.Close()

	// Repositories
	photoRepo := repository.NewPhotoRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	energyRepo := repository.NewEnergyRepository(db)
	userRepo := repository.NewUserRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	// Services
	notifier := notify.NewClient(&cfg.Notifier, log)
	energyService := energysvc.NewService(energyRepo, cfg.Energy, log)
	matchService := match.NewService(photoRepo, sessions, cfg.Matchmaking, log)
	voteService := vote.NewService(voteRepo, energyService, sessions, log)
	leaderboardService := leaderboard.NewService(photoRepo, achievementRepo, userRepo, log)
	achievementService := achievements.NewService(achievementRepo, photoRepo, userRepo, notifier, log)
	photoService := photossvc.NewService(photoRepo, userRepo, energyService, cfg.Energy.UploadBonus, log)

	if err := achievementService.SeedCatalog(cfg.Achievements); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed achievement catalog")
	}

	schedulerService := scheduler.NewService(cfg.Scheduler, achievementService, log)
	if err := schedulerService.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer schedulerService.Stop()

	// Handlers
	arenaHandler := arena.NewHandler(matchService, voteService, log)
	energyHandler := energyapi.NewHandler(energyService, cfg.Energy.AnonymousSeed, log)
	dashboardHandler := dashboard.NewHandler(leaderboardService, achievementService, log)
	photosHandler := photosapi.NewHandler(photoService, log)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/match", arenaHandler.GetMatch)
		v1.POST("/match/vote", arenaHandler.CastVote)

		v1.POST("/energy/consume", energyHandler.Consume)
		v1.POST("/energy/add", energyHandler.Add)
		v1.GET("/energy", energyHandler.Get)

		v1.POST("/photos", photosHandler.Register)
		v1.GET("/photos", photosHandler.List)
		v1.DELETE("/photos/:id", photosHandler.Delete)

		v1.GET("/leaderboard", dashboardHandler.GetLeaderboard)
		v1.GET("/users/:id/stats", dashboardHandler.GetUserStats)
		v1.GET("/users/:id/achievements", dashboardHandler.GetUserAchievements)
		v1.GET("/achievements", dashboardHandler.GetAchievementCatalog)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Prometheus.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Prometheus.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Prometheus.Port),
			Handler: metricsMux,
		}
		go func() {
			log.Info().Int("port", cfg.Metrics.Prometheus.Port).Msg("Starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown of HTTP server")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Forced shutdown of metrics server")
		}
	}

	log.Info().Msg("Server stopped")
}
