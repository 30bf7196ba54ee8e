package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/cafe-pos/internal/auth"
	"github.com/MikeMC777/cafe-pos/internal/cache"
	"github.com/MikeMC777/cafe-pos/internal/category"
	"github.com/MikeMC777/cafe-pos/internal/config"
	"github.com/MikeMC777/cafe-pos/internal/db"
	"github.com/MikeMC777/cafe-pos/internal/employee"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/grpcx"
	"github.com/MikeMC777/cafe-pos/internal/ingredient"
	"github.com/MikeMC777/cafe-pos/internal/inventory"
	"github.com/MikeMC777/cafe-pos/internal/kitchen"
	"github.com/MikeMC777/cafe-pos/internal/logging"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/payment"
	"github.com/MikeMC777/cafe-pos/internal/product"
	"github.com/MikeMC777/cafe-pos/internal/report"
	"github.com/MikeMC777/cafe-pos/internal/seating"
	"github.com/MikeMC777/cafe-pos/internal/shop"
)

const (
	shopCacheTTL         = 5 * time.Minute
	eventQueueSize       = 1024
	eventDeliveryTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("pos-api stopped")
	}
	log.Info("pos-api stopped")
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	pool, err := db.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		return err
	}
	defer pool.Close()
	log.WithFields(logrus.Fields{"host": cfg.DBHost, "db": cfg.DBName, "sslmode": cfg.SSLMode()}).Info("connected to postgres")

	var c cache.Cache = cache.Nop{Namespace: "pos"}
	if cfg.RedisAddr != "" {
		c = cache.NewRedisCache(cfg.RedisAddr, "pos")
		log.WithField("addr", cfg.RedisAddr).Info("redis cache enabled")
	}

	hub := kitchen.NewHub(log, cfg.Origins()...)
	pubs := events.Multi{hub}
	if cfg.RabbitMQURL != "" {
		mq, err := events.NewRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
		if err != nil {
			return err
		}
		defer mq.Close()
		pubs = append(pubs, mq)
		log.WithField("exchange", cfg.RabbitMQExchange).Info("rabbitmq publisher enabled")
	}
	dispatch := events.NewDispatcher(pubs, eventQueueSize, eventDeliveryTimeout, log)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	shops := shop.NewCached(shop.NewPGRepo(pool), c, shopCacheTTL)
	products := product.NewPGRepo(pool)
	seats := seating.NewPGRepo(pool)

	a := &api{
		log:         log,
		ping:        pool.Ping,
		tokens:      tokens,
		authEnabled: cfg.AuthEnabled,
		origins:     cfg.Origins(),
		hub:         hub,
		shops:       shops,
		categories:  category.NewPGRepo(pool),
		products:    products,
		seating:     seats,
		ingredients: ingredient.NewPGRepo(pool),
		employees:   employee.NewService(employee.NewPGRepo(pool), tokens),
		inventory:   inventory.NewService(inventory.NewPGRepo(pool), dispatch, log),
		orders:      order.NewService(order.NewPGRepo(pool), shops, products, seats, dispatch, log),
		payments:    payment.NewService(payment.NewPGRepo(pool), dispatch, log),
		reports:     report.NewService(report.NewPGSource(pool), c, cfg.ReportCacheTTL),
	}

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	health := grpcx.New(pool.Ping, 10*time.Second, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return dispatch.Run(ctx) })
	g.Go(func() error { return health.Serve(ctx, lis) })
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("pos-api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
