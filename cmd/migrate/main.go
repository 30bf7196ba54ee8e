package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe-pos/internal/config"
	"github.com/MikeMC777/cafe-pos/internal/db"
	"github.com/MikeMC777/cafe-pos/internal/logging"
	"github.com/MikeMC777/cafe-pos/internal/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		log.WithError(err).Fatal("connect")
	}
	defer pool.Close()

	ran, err := migrations.Up(ctx, pool, log)
	if err != nil {
		log.WithError(err).Fatal("migrate")
	}
	log.WithField("applied", len(ran)).Info("schema up to date")
}
