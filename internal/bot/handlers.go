package bot

import (
	"context"
	"fmt"
	"strings"

	"garden_bot/internal/model"
	"garden_bot/internal/render"
	"garden_bot/internal/storage"
)

const (
	cmdStatus = "status"
	cmdStock  = "stock"
)

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, `Welcome to Garden Stock Bot!

Stock, merchant, catalog and weather updates are posted to their channels automatically.

Use /help for the command reference.`)
}

func (b *Bot) handleHelp(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, `/status - last run and next wake-up of every monitor
/stock [seed|gear|egg|eventshop] - last published stock`)
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	if b.status == nil {
		b.reply(ctx, chatID, "Monitors are not running.")
		return
	}
	b.reply(ctx, chatID, FormatStatus(b.status.Statuses()))
}

func (b *Bot) handleStock(ctx context.Context, chatID int64, args string) {
	kinds, err := ParseStockArgs(args)
	if err != nil {
		b.reply(ctx, chatID, fmt.Sprintf("%v\nUsage: /stock [seed|gear|egg|eventshop]", err))
		return
	}
	b.sendWithKeyboard(ctx, chatID, b.stockText(ctx, kinds))
}

func (b *Bot) stockText(ctx context.Context, kinds []model.SnapshotKind) string {
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		items, err := storage.Load[[]model.ItemEntry](ctx, b.snapshots, kind, nil)
		if err != nil {
			b.log.ErrorContext(ctx, "load stock snapshot", "kind", kind, "error", err)
		}
		if len(items) == 0 {
			parts = append(parts, render.StockTitle(kind)+"\nNothing published yet.")
			continue
		}
		parts = append(parts, b.render.Stock(render.StockTitle(kind), items).Text)
	}
	return strings.Join(parts, "\n\n")
}
