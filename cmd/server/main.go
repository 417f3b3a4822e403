package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentbridge/gateway/internal/api"
	"github.com/talentbridge/gateway/internal/api/middleware"
	"github.com/talentbridge/gateway/internal/core/ports"
	"github.com/talentbridge/gateway/internal/infrastructure/backend"
	"github.com/talentbridge/gateway/internal/infrastructure/config"
	"github.com/talentbridge/gateway/internal/infrastructure/http/handlers"
	"github.com/talentbridge/gateway/internal/infrastructure/storage"
	mongostore "github.com/talentbridge/gateway/internal/infrastructure/storage/mongo"
	redisstore "github.com/talentbridge/gateway/internal/infrastructure/storage/redis"
	"github.com/talentbridge/gateway/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	var (
		factory ports.StorageFactory
		health  = make(map[string]handlers.Pinger)
	)

	switch cfg.Storage.Driver {
	case "redis":
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		factory = redisstore.NewFactory(rdb, cfg.Session.TTL)
		health["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})

	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		factory = mongostore.NewFactory(db)
		health["mongodb"] = handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})

	case "memory":
		factory = storage.NewMemoryFactory()

	case "disabled":
		factory = storage.DisabledFactory{}

	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("unknown storage driver")
	}

	backendClient := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, nil)

	e := api.NewRouter(api.Deps{
		Storage:       factory,
		Backend:       backendClient,
		Log:           log,
		SessionCookie: cfg.Session.CookieName,
		SessionTTL:    cfg.Session.TTL,
		Guard: middleware.GuardConfig{
			GraceWindow:  cfg.Guard.GraceWindow,
			LoginRoute:   cfg.Guard.LoginRoute,
			LandingRoute: cfg.Guard.LandingRoute,
		},
		Health: health,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.BaseURL).Msg("gateway started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
