package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/homimatch/server/internal/cache"
	"github.com/homimatch/server/internal/clock"
	"github.com/homimatch/server/internal/config"
	"github.com/homimatch/server/internal/notify"
)

// AppContext holds the shared dependencies every service is constructed
// from. It is built once in main and passed down explicitly; nothing in the
// process reaches for a global client.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Notifier   notify.Notifier
	Clock      clock.Clock
}

// New creates a new AppContext. A nil clock defaults to the system clock
// and a nil notifier to the log-only dispatcher.
func New(cfg *config.Config, database *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, notifier notify.Notifier, clk clock.Clock) *AppContext {
	if clk == nil {
		clk = clock.System{}
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	return &AppContext{
		Config:     cfg,
		DB:         database,
		RedisCache: rdb,
		Logger:     logger,
		Notifier:   notifier,
		Clock:      clk,
	}
}
