package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Rascal55/MusicQuizApp/internal/config"
	"github.com/Rascal55/MusicQuizApp/internal/httpapi"
	"github.com/Rascal55/MusicQuizApp/internal/hub"
)

func main() {
	_ = godotenv.Load() // .env is optional outside dev

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	h := hub.NewHub(ctx, hub.Options{
		SessionTTL:    cfg.SessionTTL,
		SweepInterval: cfg.SweepInterval,
		Logger:        logger,
	})

	handler := httpapi.SetupRoutes(h, cfg.AllowedOrigin, cfg.OriginPatterns(), logger)

	logger.Info("music quiz backend listening", zap.Int("port", cfg.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), handler); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
