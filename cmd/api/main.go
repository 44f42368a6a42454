package main

import (
	"context"
	"log"
	"time"

	"freightmarket-api-server/config"
	"freightmarket-api-server/internal/api/routes"
	"freightmarket-api-server/internal/auth"
	"freightmarket-api-server/internal/database"
	"freightmarket-api-server/internal/jobs"
	"freightmarket-api-server/internal/notify"
	"freightmarket-api-server/internal/socket"
	"freightmarket-api-server/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not create logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	db, err := database.Connect(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		zap.S().Fatalw("failed to connect to mongo", "error", err)
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		zap.S().Fatalw("failed to create indexes", "error", err)
	}
	if err := database.SeedAdmin(context.Background(), db, cfg); err != nil {
		zap.S().Fatalw("failed to seed admin", "error", err)
	}

	expiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		expiration = 24 * time.Hour
	}
	authService := auth.NewService(cfg.JWT.Secret, expiration)

	wsHub := socket.NewHub()
	mongoStore := store.NewMongo(db)
	dispatcher := notify.NewDispatcher(mongoStore, wsHub)
	jobService := jobs.NewService(mongoStore, mongoStore, dispatcher)

	router := routes.SetupRouter(cfg, mongoStore, jobService, authService, wsHub)

	zap.S().Infow("starting API server", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zap.S().Fatalw("server stopped", "error", err)
	}
}
