// Command seed replaces a user's workouts with randomly generated demo data.
package main

import (
	"alcyxob/runlog/internal/config"
	"alcyxob/runlog/internal/logging"
	"alcyxob/runlog/internal/repository/mongo"
	"alcyxob/runlog/internal/seed"
	"alcyxob/runlog/internal/service"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {
	seedCfg := seed.DefaultConfig()
	var configPath string

	flag.StringVar(&configPath, "config", ".", "directory containing config.yaml")
	flag.StringVar(&seedCfg.Email, "email", "", "email of the user to seed (required)")
	flag.StringVar(&seedCfg.Name, "name", seedCfg.Name, "name used when the user has to be created")
	flag.StringVar(&seedCfg.Password, "password", os.Getenv("SEED_PASSWORD"), "password used when the user has to be created")
	flag.IntVar(&seedCfg.Count, "count", seedCfg.Count, "number of workouts to create")
	flag.IntVar(&seedCfg.Days, "days", seedCfg.Days, "spread workouts over this many past days")
	flag.Int64Var(&seedCfg.Seed, "seed", 0, "random seed for reproducibility (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("could not load config")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	if seedCfg.Email == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, cfg, seedCfg, logger); err != nil {
		logger.WithError(err).Error("seeding failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, seedCfg seed.Config, logger logrus.FieldLogger) error {
	dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	indexCtx, cancelIndexes := context.WithTimeout(ctx, time.Minute)
	defer cancelIndexes()
	if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
		return err
	}

	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	// the seeder never issues tokens, only registers users
	authService := service.NewAuthService(userRepo, "seed", cfg.JWT.Expiration)

	_, err = seed.NewSeeder(authService, userRepo, workoutRepo, logger).Run(ctx, seedCfg)
	return err
}
