package monitor

import (
	"context"
	"time"

	"garden_bot/internal/detect"
	"garden_bot/internal/model"
	"garden_bot/internal/notify"
	"garden_bot/internal/render"
	"garden_bot/internal/schedule"
)

// Stock publishes the seed, gear, egg and event shop stock.
type Stock struct {
	deps          Deps
	stockChat     int64
	eventShopChat int64
}

// NewStock creates the stock monitor. Seed, gear and egg stock go to
// stockChat, the event shop to eventShopChat.
func NewStock(d Deps, stockChat, eventShopChat int64) *Stock {
	return &Stock{deps: d, stockChat: stockChat, eventShopChat: eventShopChat}
}

// Name implements schedule.Task.
func (s *Stock) Name() string { return "stock" }

// Cycle implements schedule.Task.
func (s *Stock) Cycle(ctx context.Context, at time.Time) time.Duration {
	ctx = begin(ctx, s.Name())
	listing, err := s.deps.Feed.Stock(ctx)
	if err != nil {
		s.deps.Log.WarnContext(ctx, "fetch stock", "error", err)
		return StockInterval
	}

	now := at.Unix()
	parts := []struct {
		kind    model.SnapshotKind
		key     string
		chatID  int64
		items   []model.ItemEntry
		mention bool
	}{
		{model.SnapshotSeed, model.KeyStockSeed, s.stockChat, listing.Seed, true},
		{model.SnapshotGear, model.KeyStockGear, s.stockChat, listing.Gear, true},
		{model.SnapshotEgg, model.KeyStockEgg, s.stockChat, listing.Egg, true},
		{model.SnapshotEventShop, model.KeyStockEventShop, s.eventShopChat, listing.EventShop, false},
	}

	var ends []int64
	for _, p := range parts {
		active := detect.Active(p.items, now)
		for _, it := range active {
			ends = append(ends, *it.End)
		}

		title, mention := render.StockTitle(p.kind), p.mention
		publishChanged(ctx, s.deps, subFeed[model.ItemEntry]{
			kind:    p.kind,
			key:     p.key,
			chatID:  p.chatID,
			changed: detect.ItemsChanged,
			render: func(cur []model.ItemEntry) notify.Message {
				msg := s.deps.Render.Stock(title, cur)
				if mention {
					msg.Mention = s.deps.Render.Mentions(cur)
				}
				return msg
			},
		}, active)
	}

	return schedule.NextDelay(ends, StockInterval, now)
}
