package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/naveen-b26/ams-back/internal/attendance"
	"github.com/naveen-b26/ams-back/internal/config"
	"github.com/naveen-b26/ams-back/internal/database"
	"github.com/naveen-b26/ams-back/internal/handlers"
	"github.com/naveen-b26/ams-back/internal/middleware"
	"github.com/naveen-b26/ams-back/internal/roster"
	"github.com/naveen-b26/ams-back/internal/routes"
	"github.com/naveen-b26/ams-back/internal/token"
	"github.com/naveen-b26/ams-back/internal/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	verifier, err := middleware.NewStaffVerifier(cfg.Auth0Domain, cfg.Auth0Audience, cfg.Auth0Namespace)
	if err != nil {
		logger.Fatal("failed to initialize JWKS verifier", zap.Error(err))
	}

	tokens := token.NewService(cfg.CheckInSecret, cfg.CheckInTokenTTL)
	hub := ws.NewHub(logger)
	clock := attendance.SystemClock{}

	svc := attendance.NewService(
		attendance.NewMongoLedgerStore(db),
		roster.NewMongoRoster(db),
		tokens,
		clock,
		hub,
		logger,
	)

	h := handlers.NewAttendanceHandler(svc, tokens, clock, logger)

	r := gin.Default()
	routes.Register(r, h, hub, verifier)

	logger.Info("server running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
