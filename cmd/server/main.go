package main

import (
	"context"

	"github.com/homimatch/server/internal/app"
	"github.com/homimatch/server/internal/cache"
	"github.com/homimatch/server/internal/config"
	"github.com/homimatch/server/internal/db"
	"github.com/homimatch/server/internal/logger"
	"github.com/homimatch/server/internal/metrics"
	"github.com/homimatch/server/internal/server"
	"github.com/homimatch/server/internal/service/assignment"
	"github.com/homimatch/server/internal/service/invite"
	"github.com/homimatch/server/internal/service/match"
	"github.com/homimatch/server/internal/service/message"
	"github.com/homimatch/server/internal/service/recommend"
	"github.com/homimatch/server/internal/service/swipe"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	metrics.Register()

	appCtx := app.New(cfg, database, redisCache, log, nil, nil)

	registrars := []server.Registrar{
		match.NewHandler(appCtx),
		swipe.NewHandler(appCtx),
		message.NewHandler(appCtx),
		assignment.NewHandler(appCtx),
		invite.NewHandler(appCtx),
		recommend.NewHandler(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
