package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"garden_bot/internal/model"
)

func stockKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(stockKinds))
	for _, k := range stockKinds {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(k), cmdStock+":"+string(k)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func (b *Bot) sendWithKeyboard(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = stockKeyboard()
	if _, err := b.send(ctx, msg); err != nil {
		b.log.ErrorContext(ctx, "send stock reply", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.ErrorContext(ctx, "send callback ack", "error", err)
	}
	if cb.Message == nil {
		return
	}

	action, arg, ok := strings.Cut(cb.Data, ":")
	if !ok || action != cmdStock {
		return
	}
	kind, ok := parseStockKind(arg)
	if !ok {
		return
	}

	b.log.InfoContext(ctx, "callback",
		"action", action,
		"kind", kind,
		"chat_id", cb.Message.Chat.ID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	b.sendWithKeyboard(ctx, cb.Message.Chat.ID, b.stockText(ctx, []model.SnapshotKind{kind}))
}
