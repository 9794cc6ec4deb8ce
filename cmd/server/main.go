package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neurostat/exercise-service/internal/cache"
	"github.com/neurostat/exercise-service/internal/config"
	"github.com/neurostat/exercise-service/internal/handlers"
	"github.com/neurostat/exercise-service/internal/repositories/postgres"
	"github.com/neurostat/exercise-service/internal/selector"
	"github.com/neurostat/exercise-service/internal/services"
	"github.com/neurostat/exercise-service/internal/session"
	"github.com/neurostat/exercise-service/internal/utils"
	"github.com/neurostat/exercise-service/internal/validator"
	"github.com/neurostat/exercise-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)
	logger.Info("Starting exercise service", "port", cfg.Port, "environment", cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("Failed to migrate schema", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	store := session.NewRedisStore(redisClient, cfg.SessionTTL)
	ruleCache := cache.NewRedisCache(redisClient, slogger)

	eventCfg := config.LoadEventConfig()
	publisher, err := eventCfg.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()
	selCfg := selector.Config{
		MaxRetries:            cfg.SelectorMaxRetries,
		FallbackUnconstrained: cfg.SelectorFallback,
	}

	exerciseService := services.NewExerciseService(repo, store, publisher, ruleCache, slogger, v, selCfg)
	gradingService := services.NewGradingService(store, publisher, slogger, v)
	contentService := services.NewContentService(repo, publisher, slogger, v)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	hm := handlers.NewHandlerManager(exerciseService, gradingService, contentService, logger)
	hm.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}
