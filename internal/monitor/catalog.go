package monitor

import (
	"context"
	"time"

	"garden_bot/internal/detect"
	"garden_bot/internal/model"
	"garden_bot/internal/notify"
	"garden_bot/internal/schedule"
)

type catalogFeed struct {
	catalog model.CatalogKind
	kind    model.SnapshotKind
	key     string
	title   string
	chatID  int64
}

// Catalog publishes "last seen" digests of one or more item catalogs.
type Catalog struct {
	deps     Deps
	name     string
	fallback time.Duration
	feeds    []catalogFeed
}

// NewEggCatalog creates the egg catalog monitor.
func NewEggCatalog(d Deps, eggChat int64) *Catalog {
	return &Catalog{
		deps:     d,
		name:     "egg",
		fallback: EggInterval,
		feeds: []catalogFeed{
			{model.CatalogEgg, model.SnapshotCatalogEgg, model.KeyEgg, "Eggs", eggChat},
		},
	}
}

// NewSeedGearCatalog creates the seed and gear catalog monitor.
func NewSeedGearCatalog(d Deps, seedChat, gearChat int64) *Catalog {
	return &Catalog{
		deps:     d,
		name:     "catalog",
		fallback: CatalogInterval,
		feeds: []catalogFeed{
			{model.CatalogSeed, model.SnapshotCatalogSeed, model.KeySeed, "Seeds", seedChat},
			{model.CatalogGear, model.SnapshotCatalogGear, model.KeyGear, "Gear", gearChat},
		},
	}
}

// Name implements schedule.Task.
func (c *Catalog) Name() string { return c.name }

// Cycle implements schedule.Task.
func (c *Catalog) Cycle(ctx context.Context, at time.Time) time.Duration {
	ctx = begin(ctx, c.Name())
	now := at.Unix()

	var seen []int64
	for _, f := range c.feeds {
		if f.chatID == 0 {
			continue
		}
		entries, err := c.deps.Feed.Catalog(ctx, f.catalog)
		if err != nil {
			c.deps.Log.WarnContext(ctx, "fetch catalog", "catalog", f.catalog, "error", err)
			continue
		}

		observed := detect.Observed(entries)
		for _, e := range observed {
			seen = append(seen, *e.LastSeen)
		}

		title := f.title
		publishChanged(ctx, c.deps, subFeed[model.CatalogEntry]{
			kind:    f.kind,
			key:     f.key,
			chatID:  f.chatID,
			changed: detect.CatalogChanged,
			render: func(cur []model.CatalogEntry) notify.Message {
				return c.deps.Render.Catalog(title, cur)
			},
		}, observed)
	}

	return schedule.NextDelay(seen, c.fallback, now)
}
