// cmd/server/main.go

// Command server runs the ConvinceAI game backend: a thin HTTP façade
// over the managed Postgres backend that owns all game logic.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/newambition/convince/internal/auth"
	"github.com/newambition/convince/internal/cache"
	"github.com/newambition/convince/internal/config"
	"github.com/newambition/convince/internal/database"
	"github.com/newambition/convince/internal/handlers"
	"github.com/newambition/convince/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer pool.Close()

	store := database.NewStore(pool)
	payout := cache.NewPayout(store, cfg.PayoutCacheTTL)
	identity := auth.NewClient(cfg.AuthBaseURL, cfg.AuthServiceKey)

	h := handlers.New(store, payout, identity)
	srv := server.New(cfg, h)

	log.WithFields(log.Fields{
		"addr":        cfg.ListenAddr,
		"environment": cfg.Environment,
	}).Info("Server listening")

	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
	log.Info("Server stopped")
}

func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}
