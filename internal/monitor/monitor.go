// Package monitor implements the per-feed monitors. Each monitor samples its
// feed, publishes what changed since the last published state and tells the
// scheduler when to look again.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"garden_bot/internal/config"
	"garden_bot/internal/logger"
	"garden_bot/internal/model"
	"garden_bot/internal/notify"
	"garden_bot/internal/render"
	"garden_bot/internal/schedule"
	"garden_bot/internal/storage"
)

// Fallback delays used when the sampled data carries no usable expiry.
const (
	StockInterval    = 5 * time.Minute
	MerchantInterval = 4 * time.Hour
	EggInterval      = 30 * time.Minute
	CatalogInterval  = 5 * time.Minute
	WeatherInterval  = time.Minute
)

// Feed is the game-state source.
type Feed interface {
	Stock(ctx context.Context) (model.StockListing, error)
	Weather(ctx context.Context) ([]model.WeatherEvent, error)
	Catalog(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error)
}

// Publisher delivers notifications.
type Publisher interface {
	Publish(ctx context.Context, key string, chatID int64, msg notify.Message) error
	Announce(ctx context.Context, chatID int64, msg notify.Message) error
}

// Deps are the collaborators shared by all monitors.
type Deps struct {
	Feed      Feed
	Store     storage.Snapshots
	Publisher Publisher
	Render    *render.Formatter
	Log       *slog.Logger
}

// All builds every monitor publishing to the given channels.
func All(d Deps, ch config.Channels) []schedule.Task {
	return []schedule.Task{
		NewStock(d, ch.Stock, ch.EventShop),
		NewMerchant(d, ch.Merchant),
		NewEggCatalog(d, ch.Egg),
		NewSeedGearCatalog(d, ch.Seed, ch.Gear),
		NewWeather(d, ch.WeatherUpdates, ch.Weather),
	}
}

// begin tags ctx with the monitor name and a fresh cycle ID for logging.
func begin(ctx context.Context, name string) context.Context {
	return logger.Ctx(ctx,
		slog.String("monitor", name),
		slog.String("cycle", uuid.NewString()),
	)
}

// subFeed is one independently published part of a monitor's feed.
type subFeed[T any] struct {
	kind    model.SnapshotKind
	key     string
	chatID  int64
	changed func(cur, prev []T) bool
	render  func(cur []T) notify.Message
}

// publishChanged compares cur with the stored snapshot and publishes it when it
// changed. The snapshot is replaced only after a successful publish, or
// silently when cur is empty.
func publishChanged[T any](ctx context.Context, d Deps, f subFeed[T], cur []T) {
	if f.chatID == 0 {
		return
	}
	log := d.Log.With("kind", f.kind)

	prev, err := storage.Load[[]T](ctx, d.Store, f.kind, nil)
	if err != nil {
		log.ErrorContext(ctx, "load snapshot, treating as empty", "error", err)
	}
	if !f.changed(cur, prev) {
		log.DebugContext(ctx, "unchanged")
		return
	}

	if len(cur) == 0 {
		if err := storage.Save(ctx, d.Store, f.kind, cur); err != nil {
			log.ErrorContext(ctx, "save snapshot", "error", err)
		}
		return
	}

	if err := d.Publisher.Publish(ctx, f.key, f.chatID, f.render(cur)); err != nil {
		log.ErrorContext(ctx, "publish", "key", f.key, "error", err)
		return
	}
	if err := storage.Save(ctx, d.Store, f.kind, cur); err != nil {
		log.ErrorContext(ctx, "save snapshot", "error", err)
		return
	}
	log.InfoContext(ctx, "published", "key", f.key, "entries", len(cur))
}
