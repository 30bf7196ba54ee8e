package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe-pos/internal/auth"
	"github.com/MikeMC777/cafe-pos/internal/category"
	"github.com/MikeMC777/cafe-pos/internal/config"
	"github.com/MikeMC777/cafe-pos/internal/db"
	"github.com/MikeMC777/cafe-pos/internal/employee"
	"github.com/MikeMC777/cafe-pos/internal/ingredient"
	"github.com/MikeMC777/cafe-pos/internal/logging"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/seating"
	"github.com/MikeMC777/cafe-pos/internal/shop"
)

func main() {
	file := flag.String("file", "cmd/seed/seed.example.yaml", "seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	fh, err := os.Open(*file)
	if err != nil {
		log.WithError(err).Fatal("open seed")
	}
	f, err := Parse(fh)
	fh.Close()
	if err != nil {
		log.WithError(err).Fatal("parse seed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		log.WithError(err).Fatal("connect")
	}
	defer pool.Close()

	t := Targets{
		Shops:       shop.NewPGRepo(pool),
		Categories:  category.NewPGRepo(pool),
		Products:    product.NewPGRepo(pool),
		Seating:     seating.NewPGRepo(pool),
		Ingredients: ingredient.NewPGRepo(pool),
		Employees:   employee.NewService(employee.NewPGRepo(pool), auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)),
	}
	n, err := Apply(ctx, t, f, log)
	if err != nil {
		log.WithError(err).WithField("counts", n).Fatal("seed failed")
	}
	log.WithFields(logrus.Fields{
		"shops":       n.Shops,
		"categories":  n.Categories,
		"products":    n.Products,
		"options":     n.Options,
		"tables":      n.Tables,
		"ingredients": n.Ingredients,
		"employees":   n.Employees,
	}).Info("seed complete")
}
