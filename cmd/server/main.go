package main

import (
	"alcyxob/runlog/internal/api"
	"alcyxob/runlog/internal/config"
	"alcyxob/runlog/internal/fitbit"
	"alcyxob/runlog/internal/logging"
	"alcyxob/runlog/internal/observability"
	"alcyxob/runlog/internal/repository/mongo"
	"alcyxob/runlog/internal/service"
	"alcyxob/runlog/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// @title Runlog API
// @version 1.0
// @description Personal running log with Fitbit import.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.WithError(err).Fatal("could not load config")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting runlog server")

	if cfg.JWT.Secret == "" {
		logger.Fatal("jwt.secret (JWT_SECRET) must be set")
	}
	if cfg.Fitbit.ClientID == "" || cfg.Fitbit.ClientSecret == "" {
		logger.Warn("fitbit client credentials are not configured; Fitbit import will fail")
	}

	ctx := context.Background()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		logger.WithError(err).Fatal("could not connect to MongoDB")
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.WithField("database", cfg.Database.Name).Info("database connection established")

	// --- Ensure Indexes ---
	indexCtx, cancelIndexes := context.WithTimeout(ctx, time.Minute)
	if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
		// the unique indexes back the duplicate-import and email checks
		cancelIndexes()
		logger.WithError(err).Fatal("failed to create indexes")
	}
	cancelIndexes()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	fitbitAccountRepo := mongo.NewMongoFitbitAccountRepository(appDB)
	exportRepo := mongo.NewMongoExportRepository(appDB)

	// --- Initialize Services ---
	fitbitClient := fitbit.NewClient(cfg.Fitbit, logger)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	workoutService := service.NewWorkoutService(workoutRepo, exportRepo, fileStorage, logger)
	fitbitService := service.NewFitbitService(fitbitClient, fitbitAccountRepo, workoutRepo, cfg.JWT.Secret, cfg.Fitbit, logger)

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger(logger), observability.GinMiddleware())

	api.SetupRoutes(router, cfg.JWT.Secret, cfg.Fitbit.SuccessRedirect, authService, workoutService, fitbitService, logger)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("address", cfg.Server.Address).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("ListenAndServe failed")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exiting")
}
